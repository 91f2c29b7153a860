package grid

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack_BitLayout(t *testing.T) {
	t.Parallel()

	v := Voxel{
		Filled:          true,
		ContourPosition: mgl32.Vec3{0.5, -1, 2},
		EdgeMask:        1<<0 | 1<<2 | 1<<11,
		FlipMask:        1 << 3,
	}

	packed := Pack(v)

	assert.Equal(t, [3]float32{0.5, -1, 2}, [3]float32{packed[0], packed[1], packed[2]})
	// bit 0 filled, bits 1-12 edges, bits 13-24 flips
	assert.Equal(t, uint32(0x1100b), math.Float32bits(packed[3]))

	center := mgl32.Vec3{9, 9, 9}
	back := Unpack([3]int{1, 2, 3}, center, packed)
	v.Coords = [3]int{1, 2, 3}
	v.Center = center
	assert.Equal(t, v, back)
}

func TestUnpack_IgnoresHighBits(t *testing.T) {
	t.Parallel()

	w := uint32(1<<30 | 0xfff<<flipShift | 0x3<<edgeShift)
	v := Unpack([3]int{}, mgl32.Vec3{}, [4]float32{0, 0, 0, math.Float32frombits(w)})

	assert.False(t, v.Filled)
	assert.Equal(t, uint16(0x3), v.EdgeMask)
	assert.Equal(t, uint16(0xfff), v.FlipMask)
}

func sampleGrid(t *testing.T) *Dense {
	t.Helper()

	g, err := NewDense(Descriptor{
		Min:       mgl32.Vec3{-1, -1, -1},
		VoxelSize: 0.25,
		Size:      [3]int{2, 3, 2},
	}, [3]int{3, 4, 3})
	require.NoError(t, err)

	require.True(t, g.Set(Voxel{Coords: [3]int{1, 2, 1}, Filled: true, ContourPosition: mgl32.Vec3{-0.6, -0.4, -0.7}, EdgeMask: 0x111}))
	require.True(t, g.Set(Voxel{Coords: [3]int{2, 3, 2}, ContourPosition: mgl32.Vec3{-0.4, -0.1, -0.4}, EdgeMask: 0x002, FlipMask: 0x002}))
	require.True(t, g.Set(Voxel{Coords: [3]int{0, 0, 0}, Filled: true}))

	return g
}

func encode(t *testing.T, g *Dense) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g))

	return buf.Bytes()
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	g := sampleGrid(t)
	data := encode(t, g)

	// header + 3*4*3 voxels of 4 float32
	assert.Len(t, data, binary.Size(header{})+36*16)

	back, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, g.Descriptor(), back.Descriptor())
	assert.Equal(t, g.Extent(), back.Extent())

	for _, idx := range [][3]int{{1, 2, 1}, {2, 3, 2}, {0, 0, 0}, {1, 1, 1}} {
		want, ok := g.VoxelAt(idx[0], idx[1], idx[2])
		require.True(t, ok)
		got, ok := back.VoxelAt(idx[0], idx[1], idx[2])
		require.True(t, ok)
		assert.Equalf(t, want, got, "voxel %v", idx)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	data := encode(t, sampleGrid(t))

	badMagic := append([]byte(nil), data...)
	badMagic[0] = 'X'
	_, err := Decode(bytes.NewReader(badMagic))
	assert.True(t, errors.Is(err, ErrBadMagic), "got %v", err)

	badVersion := append([]byte(nil), data...)
	ByteOrder.PutUint32(badVersion[4:], 7)
	_, err = Decode(bytes.NewReader(badVersion))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion), "got %v", err)

	_, err = Decode(bytes.NewReader(data[:len(data)-3]))
	assert.Error(t, err, "truncated voxel data")

	_, err = Decode(bytes.NewReader(data[:10]))
	assert.Error(t, err, "truncated header")

	zeroSize := append([]byte(nil), data...)
	// Size starts after magic, version, min and voxel size
	ByteOrder.PutUint32(zeroSize[4+4+12+4:], 0)
	_, err = Decode(bytes.NewReader(zeroSize))
	assert.Error(t, err, "zero grid size")

	// Extent starts after Size
	const extentOffset = 4 + 4 + 12 + 4 + 12

	extents := []struct {
		name   string
		extent [3]uint32
	}{
		{"product wraps to zero", [3]uint32{1 << 22, 1 << 21, 1 << 21}},
		{"product above the limit", [3]uint32{1 << 10, 1 << 10, 1 << 10}},
		{"zero extent", [3]uint32{0, 3, 2}},
		{"extent below size", [3]uint32{1, 3, 2}},
	}

	for _, tt := range extents {
		corrupt := append([]byte(nil), data...)
		for i, e := range tt.extent {
			ByteOrder.PutUint32(corrupt[extentOffset+4*i:], e)
		}

		g, err := Decode(bytes.NewReader(corrupt))
		assert.Errorf(t, err, tt.name)
		assert.Nilf(t, g, tt.name)
	}
}

func writeBundle(t *testing.T, path string, files map[string][]byte) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)

	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cat.data")
	require.NoError(t, os.WriteFile(path, encode(t, sampleGrid(t)), 0o600))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, [3]int{2, 3, 2}, g.Descriptor().Size)

	_, err = Load(filepath.Join(dir, "does_not_exist.data"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.data"), bytes.Repeat([]byte("garbage "), 10), 0o600))
	_, err = Load(filepath.Join(dir, "garbage.data"))
	assert.True(t, errors.Is(err, ErrBadMagic), "got %v", err)
}

func TestArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := encode(t, sampleGrid(t))

	bundlePath := filepath.Join(dir, "accelerators.zip")
	writeBundle(t, bundlePath, map[string][]byte{
		"Grids/CatVX_AvgNorm.data": data,
	})

	looseDir := filepath.Join(dir, "loose")
	require.NoError(t, os.Mkdir(looseDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(looseDir, "diamond.data"), data, 0o600))

	a, err := OpenArchive(looseDir, bundlePath)
	require.NoError(t, err)

	defer a.Close()

	tests := []struct {
		name string
		path string
	}{
		{"directory", "diamond.data"},
		{"bundle exact", "Grids/CatVX_AvgNorm.data"},
		{"bundle case-insensitive", "grids/catvx_avgnorm.data"},
	}

	for _, tt := range tests {
		g, err := a.Load(tt.path)
		if assert.NoErrorf(t, err, tt.name) {
			assert.Equalf(t, [3]int{3, 4, 3}, g.Extent(), tt.name)
		}
	}

	_, err = a.Load("grids/missing.data")
	assert.True(t, errors.Is(err, ErrFileNotFound), "got %v", err)
}

func TestOpenArchive_BadBundle(t *testing.T) {
	t.Parallel()

	_, err := OpenArchive("", filepath.Join(t.TempDir(), "does_not_exist.zip"))
	assert.Error(t, err)
}

// memPack is an in-memory pack.
type memPack map[string][]byte

func (m memPack) open(path string) (io.ReadCloser, bool) {
	data, ok := m[path]
	if !ok {
		return nil, false
	}

	return io.NopCloser(bytes.NewReader(data)), true
}

func TestArchive_PackOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := encode(t, sampleGrid(t))

	small, err := NewDense(Descriptor{VoxelSize: 1, Size: [3]int{1, 1, 1}}, [3]int{})
	require.NoError(t, err)

	bundlePath := filepath.Join(dir, "grids.zip")
	writeBundle(t, bundlePath, map[string][]byte{"shared.data": data})

	a, err := OpenArchive("", bundlePath)
	require.NoError(t, err)

	defer a.Close()

	a.packs = append(a.packs, memPack{
		"shared.data": encode(t, small),
		"vpk.data":    encode(t, small),
	})

	// the bundle shadows later packs
	g, err := a.Load("shared.data")
	require.NoError(t, err)
	assert.Equal(t, [3]int{3, 4, 3}, g.Extent())

	g, err = a.Load("vpk.data")
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 1, 1}, g.Extent())

	_, err = a.Load("missing.data")
	assert.True(t, errors.Is(err, ErrFileNotFound), "got %v", err)

	require.NoError(t, a.Close())
	_, err = a.Load("vpk.data")
	assert.True(t, errors.Is(err, ErrFileNotFound), "got %v", err)
}

func TestArchive_AddVPK_Missing(t *testing.T) {
	t.Parallel()

	a, err := OpenArchive("")
	require.NoError(t, err)

	err = a.AddVPK(filepath.Join(t.TempDir(), "pak01_dir.vpk"))
	assert.Error(t, err)
	assert.Empty(t, a.packs)
}
