// Package grid describes the voxel grid the contour tracer consumes: its
// geometry, the per-voxel dual contouring records and their packed storage.
package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// EdgeCount is the number of edges of a voxel cell.
const EdgeCount = 12

const edgeBits = uint16(1)<<EdgeCount - 1

// Descriptor is the geometry of a voxel grid.
type Descriptor struct {
	Min       mgl32.Vec3
	VoxelSize float32
	Size      [3]int
}

// Validate reports whether d describes a usable grid.
func (d Descriptor) Validate() error {
	if !(d.VoxelSize > 0) {
		return errors.Errorf("voxel size must be positive, got %v", d.VoxelSize)
	}

	for i, n := range d.Size {
		if n <= 0 {
			return errors.Errorf("grid size must be positive on every axis, got %d on axis %d", n, i)
		}
	}

	return nil
}

// Max returns the far corner of the grid.
func (d Descriptor) Max() mgl32.Vec3 {
	return mgl32.Vec3{
		d.Min[0] + float32(d.Size[0])*d.VoxelSize,
		d.Min[1] + float32(d.Size[1])*d.VoxelSize,
		d.Min[2] + float32(d.Size[2])*d.VoxelSize,
	}
}

// IndexOf maps a grid-space position to the index of the voxel containing it.
// The result may lie outside the grid; check it with Contains.
func (d Descriptor) IndexOf(p mgl32.Vec3) [3]int {
	var idx [3]int

	for i := range idx {
		f := math.Floor(float64((p[i] - d.Min[i]) / d.VoxelSize))
		if math.IsNaN(f) || math.IsInf(f, 0) {
			// any out-of-range value will do
			idx[i] = -1
			continue
		}

		idx[i] = int(f)
	}

	return idx
}

// Contains reports whether idx lies in [0, Size) on every axis.
func (d Descriptor) Contains(idx [3]int) bool {
	for i, n := range d.Size {
		if idx[i] < 0 || idx[i] >= n {
			return false
		}
	}

	return true
}

// VoxelMin returns the minimum corner of the voxel at idx.
func (d Descriptor) VoxelMin(idx [3]int) mgl32.Vec3 {
	return mgl32.Vec3{
		d.Min[0] + float32(idx[0])*d.VoxelSize,
		d.Min[1] + float32(idx[1])*d.VoxelSize,
		d.Min[2] + float32(idx[2])*d.VoxelSize,
	}
}

// VoxelCenter returns the center of the voxel at idx.
func (d Descriptor) VoxelCenter(idx [3]int) mgl32.Vec3 {
	half := d.VoxelSize * 0.5

	return d.VoxelMin(idx).Add(mgl32.Vec3{half, half, half})
}

// Voxel is a single cell of the grid.
//
// Filled and EdgeMask are independent: a fully interior voxel is filled but
// crosses no surface edge.
type Voxel struct {
	Coords          [3]int
	Filled          bool
	ContourPosition mgl32.Vec3 // dual contouring vertex approximating the surface inside the cell
	Center          mgl32.Vec3
	EdgeMask        uint16 // bit i set if edge i is crossed by the surface
	FlipMask        uint16 // bit i set if the quad around edge i has reversed winding
}

// HasEdge reports whether edge i of the cell is crossed by the surface.
func (v Voxel) HasEdge(i int) bool {
	return v.EdgeMask&(1<<uint(i)) != 0
}

// Flipped reports whether the quad around edge i has reversed winding.
func (v Voxel) Flipped(i int) bool {
	return v.FlipMask&(1<<uint(i)) != 0
}

// Contributes reports whether the voxel carries a meaningful contour vertex.
func (v Voxel) Contributes() bool {
	return v.EdgeMask != 0
}

// Source is a read-only voxel grid.
//
// VoxelAt returns false for indices the source cannot address. A source may
// address more than Descriptor().Size, e.g. a closing layer past the max faces.
type Source interface {
	Descriptor() Descriptor
	VoxelAt(x, y, z int) (Voxel, bool)
}
