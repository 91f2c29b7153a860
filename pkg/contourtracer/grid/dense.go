package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type cell struct {
	contour  mgl32.Vec3
	filled   bool
	edgeMask uint16
	flipMask uint16
}

// Dense is an in-memory Source backed by a flat z-major array.
type Dense struct {
	desc   Descriptor
	extent [3]int
	cells  []cell
}

var _ Source = (*Dense)(nil)

// NewDense allocates an empty grid. extent is the addressable storage size and
// must be at least desc.Size on every axis; the zero value means desc.Size.
func NewDense(desc Descriptor, extent [3]int) (*Dense, error) {
	if err := desc.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid grid descriptor")
	}

	if extent == [3]int{} {
		extent = desc.Size
	}

	n := 1

	for i := range extent {
		if extent[i] < desc.Size[i] {
			return nil, errors.Errorf("storage extent %v smaller than grid size %v", extent, desc.Size)
		}

		if n > math.MaxInt/extent[i] {
			return nil, errors.Errorf("storage extent %v too large", extent)
		}

		n *= extent[i]
	}

	return &Dense{
		desc:   desc,
		extent: extent,
		cells:  make([]cell, n),
	}, nil
}

// Descriptor implements Source.
func (g *Dense) Descriptor() Descriptor {
	return g.desc
}

// Extent returns the addressable storage size.
func (g *Dense) Extent() [3]int {
	return g.extent
}

func (g *Dense) address(x, y, z int) (int, bool) {
	if x < 0 || y < 0 || z < 0 || x >= g.extent[0] || y >= g.extent[1] || z >= g.extent[2] {
		return 0, false
	}

	return (z*g.extent[1]+y)*g.extent[0] + x, true
}

// VoxelAt implements Source.
func (g *Dense) VoxelAt(x, y, z int) (Voxel, bool) {
	addr, ok := g.address(x, y, z)
	if !ok {
		return Voxel{}, false
	}

	c := g.cells[addr]
	idx := [3]int{x, y, z}

	return Voxel{
		Coords:          idx,
		Filled:          c.filled,
		ContourPosition: c.contour,
		Center:          g.desc.VoxelCenter(idx),
		EdgeMask:        c.edgeMask,
		FlipMask:        c.flipMask,
	}, true
}

// Set stores v at v.Coords. Center is derived from the descriptor and ignored.
// Returns false if v.Coords is outside the storage extent.
func (g *Dense) Set(v Voxel) bool {
	addr, ok := g.address(v.Coords[0], v.Coords[1], v.Coords[2])
	if !ok {
		return false
	}

	g.cells[addr] = cell{
		contour:  v.ContourPosition,
		filled:   v.Filled,
		edgeMask: v.EdgeMask & edgeBits,
		flipMask: v.FlipMask & edgeBits,
	}

	return true
}
