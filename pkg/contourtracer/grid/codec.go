package grid

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ByteOrder of the grid file format.
var ByteOrder = binary.LittleEndian

// Magic and Version identify the grid file format.
var Magic = [4]byte{'D', 'C', 'V', 'G'}

const Version = uint32(1)

// upper bound on stored voxels, keeps a corrupt header from allocating the world
const maxStoredVoxels = 1 << 28

var (
	ErrBadMagic           = errors.New("not a voxel grid file")
	ErrUnsupportedVersion = errors.New("unsupported voxel grid version")
)

type header struct {
	Magic     [4]byte
	Version   uint32
	Min       [3]float32
	VoxelSize float32
	Size      [3]uint32
	Extent    [3]uint32
}

// Encode writes g in the binary grid format.
func Encode(w io.Writer, g *Dense) error {
	h := header{
		Magic:     Magic,
		Version:   Version,
		Min:       g.desc.Min,
		VoxelSize: g.desc.VoxelSize,
	}

	for i := 0; i < 3; i++ {
		h.Size[i] = uint32(g.desc.Size[i])
		h.Extent[i] = uint32(g.extent[i])
	}

	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, ByteOrder, h); err != nil {
		return errors.Wrap(err, "failed to write grid header")
	}

	data := make([]float32, 0, 4*len(g.cells))

	for _, c := range g.cells {
		packed := Pack(Voxel{
			Filled:          c.filled,
			ContourPosition: c.contour,
			EdgeMask:        c.edgeMask,
			FlipMask:        c.flipMask,
		})
		data = append(data, packed[:]...)
	}

	if err := binary.Write(bw, ByteOrder, data); err != nil {
		return errors.Wrap(err, "failed to write voxel data")
	}

	return errors.Wrap(bw.Flush(), "failed to flush grid")
}

// Decode reads a grid in the binary grid format.
func Decode(r io.Reader) (*Dense, error) {
	var h header

	if err := binary.Read(r, ByteOrder, &h); err != nil {
		return nil, errors.Wrap(err, "failed to read grid header")
	}

	if h.Magic != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "magic %q", h.Magic[:])
	}

	if h.Version != Version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", h.Version)
	}

	desc := Descriptor{
		Min:       mgl32.Vec3(h.Min),
		VoxelSize: h.VoxelSize,
	}

	var extent [3]int

	total := uint64(1)

	for i := 0; i < 3; i++ {
		if h.Extent[i] == 0 || h.Extent[i] < h.Size[i] {
			return nil, errors.Errorf("storage extent %v does not cover grid size %v", h.Extent, h.Size)
		}

		if total > maxStoredVoxels/uint64(h.Extent[i]) {
			return nil, errors.Errorf("grid extent %v too large", h.Extent)
		}

		total *= uint64(h.Extent[i])
		desc.Size[i] = int(h.Size[i])
		extent[i] = int(h.Extent[i])
	}

	g, err := NewDense(desc, extent)
	if err != nil {
		return nil, err
	}

	data := make([]float32, 4*len(g.cells))

	if err := binary.Read(r, ByteOrder, data); err != nil {
		return nil, errors.Wrap(err, "failed to read voxel data")
	}

	for i := range g.cells {
		var packed [4]float32
		copy(packed[:], data[4*i:])

		v := Unpack([3]int{}, mgl32.Vec3{}, packed)
		g.cells[i] = cell{
			contour:  v.ContourPosition,
			filled:   v.Filled,
			edgeMask: v.EdgeMask,
			flipMask: v.FlipMask,
		}
	}

	return g, nil
}
