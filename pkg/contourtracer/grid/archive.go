package grid

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	vpk "github.com/galaco/vpk2"
	"github.com/pkg/errors"
)

// ErrFileNotFound is returned when no location of an Archive holds a file.
var ErrFileNotFound = errors.New("file not found")

// Load reads a grid file from disk.
func Load(path string) (*Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open grid file %q", path)
	}

	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode grid file %q", path)
	}

	return g, nil
}

// pack is a read-only container searched after the directory.
type pack interface {
	open(path string) (io.ReadCloser, bool)
}

type bundle struct {
	reader *zip.ReadCloser
	index  map[string]*zip.File
}

type vpkPack struct {
	pak *vpk.VPK
}

// Archive looks up grid files in a directory, then in zip bundles and
// finally in VPKs.
type Archive struct {
	dir     string
	bundles []*bundle
	packs   []pack
}

// OpenArchive opens the given zip bundles. dir may be empty to only search the
// bundles.
func OpenArchive(dir string, bundlePaths ...string) (*Archive, error) {
	a := &Archive{dir: dir}

	for _, path := range bundlePaths {
		r, err := zip.OpenReader(path)
		if err != nil {
			a.Close()

			return nil, errors.Wrapf(err, "failed to open bundle %q", path)
		}

		b := &bundle{reader: r}
		a.bundles = append(a.bundles, b)
		a.packs = append(a.packs, b)
	}

	return a, nil
}

// AddVPK appends a multi-part VPK to the search path.
// base is the archive name without the "_dir.vpk" suffix, e.g. "grids/pak01".
func (a *Archive) AddVPK(base string) error {
	v, err := vpk.Open(vpk.MultiVPK(strings.TrimSuffix(base, "_dir.vpk")))
	if err != nil {
		return errors.Wrapf(err, "failed to open vpk %q", base)
	}

	a.packs = append(a.packs, vpkPack{pak: v})

	return nil
}

// Close releases the bundles.
func (a *Archive) Close() error {
	var first error

	for _, b := range a.bundles {
		if err := b.reader.Close(); err != nil && first == nil {
			first = err
		}
	}

	a.bundles = nil
	a.packs = nil

	return first
}

func (b *bundle) open(path string) (io.ReadCloser, bool) {
	f, err := b.reader.Open(path)
	if err == nil {
		stat, err := f.Stat()
		if err == nil && stat.Size() > 0 && !stat.IsDir() {
			return f, true
		}

		f.Close()
	}

	// try case-insensitive
	if b.index == nil {
		b.index = make(map[string]*zip.File)

		for _, f := range b.reader.File {
			b.index[strings.ToLower(f.Name)] = f
		}
	}

	zf, ok := b.index[strings.ToLower(path)]
	if !ok {
		return nil, false
	}

	rc, err := zf.Open()
	if err != nil {
		return nil, false
	}

	return rc, true
}

func (p vpkPack) open(path string) (io.ReadCloser, bool) {
	f, err := p.pak.Open(path)
	if err != nil {
		return nil, false
	}

	stat, err := f.Stat()
	if err != nil || stat.Size() == 0 {
		f.Close()

		return nil, false
	}

	return f, true
}

func (a *Archive) open(path string) (io.ReadCloser, error) {
	if a.dir != "" {
		f, err := os.Open(filepath.Join(a.dir, filepath.FromSlash(path)))
		if err == nil {
			stat, err := f.Stat()
			if err == nil && stat.Size() > 0 && !stat.IsDir() {
				return f, nil
			}

			f.Close()
		}
	}

	for _, p := range a.packs {
		if f, ok := p.open(path); ok {
			return f, nil
		}
	}

	return nil, errors.Wrapf(ErrFileNotFound, "%s not found", path)
}

// Load reads the named grid file from the archive.
func (a *Archive) Load(name string) (*Dense, error) {
	f, err := a.open(name)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode grid %q", name)
	}

	return g, nil
}
