// Package traversal walks the voxels a ray passes through, in distance order.
package traversal

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/grid"
)

// DefaultStepLimit bounds the number of cells a Walker visits.
const DefaultStepLimit = 1000

// Cell is one voxel visited by a Walker.
type Cell struct {
	Index [3]int
	// Entry is the ray distance at which the cell was entered.
	Entry float32
	// Exit holds, per axis, the ray distance at which the ray crosses the
	// cell's far boundary on that axis. Axes the ray does not move along are +Inf.
	Exit [3]float32
}

// ExitT returns the distance at which the ray leaves the cell.
func (c Cell) ExitT() float32 {
	return c.Exit[nextAxis(c.Exit)]
}

// Walker steps a ray through a grid one cell at a time.
// The zero value is an exhausted walker.
type Walker struct {
	desc    grid.Descriptor
	index   [3]int
	step    [3]int
	tMax    [3]float32
	tDelta  [3]float32
	entry   float32
	limit   int
	visited int
	done    bool
}

// NewWalker starts a walk at origin along direction.
// The walk is empty if origin lies outside the grid.
// limit caps the number of visited cells, DefaultStepLimit is used if it is <= 0.
func NewWalker(origin, direction mgl32.Vec3, desc grid.Descriptor, limit int) *Walker {
	if limit <= 0 {
		limit = DefaultStepLimit
	}

	w := &Walker{
		desc:  desc,
		index: desc.IndexOf(origin),
		limit: limit,
	}

	if !desc.Contains(w.index) {
		w.done = true

		return w
	}

	vs := desc.VoxelSize

	for i := 0; i < 3; i++ {
		d := direction[i]
		cellMin := desc.Min[i] + float32(w.index[i])*vs

		switch {
		case d > 0:
			w.step[i] = 1
			w.tMax[i] = mgl32.Abs((cellMin + vs - origin[i]) / d)
			w.tDelta[i] = mgl32.Abs(vs / d)
		case d < 0:
			w.step[i] = -1
			w.tMax[i] = mgl32.Abs((origin[i] - cellMin) / -d)
			w.tDelta[i] = mgl32.Abs(vs / d)
		default:
			w.tMax[i] = mgl32.InfPos
			w.tDelta[i] = mgl32.InfPos
		}
	}

	return w
}

// nextAxis returns the axis with the smallest exit distance.
// Ties go to the lowest axis index.
func nextAxis(t [3]float32) int {
	if t[0] <= t[1] && t[0] <= t[2] {
		return 0
	}

	if t[1] <= t[2] {
		return 1
	}

	return 2
}

// Next returns the current cell and advances the walker.
// ok is false once the walk left the grid or reached its step limit.
func (w *Walker) Next() (c Cell, ok bool) {
	if w.done || w.visited >= w.limit {
		return c, false
	}

	c = Cell{
		Index: w.index,
		Entry: w.entry,
		Exit:  w.tMax,
	}
	w.visited++

	axis := nextAxis(w.tMax)
	if w.step[axis] == 0 {
		// not moving along any axis
		w.done = true

		return c, true
	}

	w.entry = w.tMax[axis]
	w.index[axis] += w.step[axis]
	w.tMax[axis] += w.tDelta[axis]

	if !w.desc.Contains(w.index) {
		w.done = true
	}

	return c, true
}

// Visited returns the number of cells returned so far.
func (w *Walker) Visited() int {
	return w.visited
}

// Walk collects all cells of a walk.
func Walk(origin, direction mgl32.Vec3, desc grid.Descriptor, limit int) []Cell {
	var cells []Cell

	w := NewWalker(origin, direction, desc, limit)
	for c, ok := w.Next(); ok; c, ok = w.Next() {
		cells = append(cells, c)
	}

	return cells
}
