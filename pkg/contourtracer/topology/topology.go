// Package topology resolves the dual-contouring triangles around a voxel's edges.
package topology

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/grid"
)

// Edges maps each of a voxel's 12 edges to six neighbour offsets.
// The contour positions at (n1,n2,n3) form the first triangle and (n4,n5,n6) the second.
// Edges 0-3 are parallel to z, 4-7 to x and 8-11 to y.
var Edges = [grid.EdgeCount][6][3]int{
	{{0, 0, 0}, {-1, 0, 0}, {-1, -1, 0}, {0, 0, 0}, {0, -1, 0}, {-1, -1, 0}},
	{{-1, 1, 0}, {0, 1, 0}, {-1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {-1, 0, 0}},
	{{1, 0, 0}, {0, 0, 0}, {0, -1, 0}, {1, 0, 0}, {1, -1, 0}, {0, -1, 0}},
	{{1, 1, 0}, {0, 1, 0}, {0, 0, 0}, {1, 1, 0}, {1, 0, 0}, {0, 0, 0}},
	{{0, 0, -1}, {0, 0, 0}, {0, -1, -1}, {0, -1, 0}, {0, 0, 0}, {0, -1, -1}},
	{{0, 1, 0}, {0, 1, -1}, {0, 0, -1}, {0, 1, 0}, {0, 0, 0}, {0, 0, -1}},
	{{0, 0, 1}, {0, 0, 0}, {0, -1, 0}, {0, 0, 1}, {0, -1, 1}, {0, -1, 0}},
	{{0, 1, 0}, {0, 1, 1}, {0, 0, 0}, {0, 1, 1}, {0, 0, 1}, {0, 0, 0}},
	{{0, 0, -1}, {0, 0, 0}, {-1, 0, 0}, {0, 0, -1}, {-1, 0, -1}, {-1, 0, 0}},
	{{1, 0, -1}, {1, 0, 0}, {0, 0, 0}, {1, 0, -1}, {0, 0, -1}, {0, 0, 0}},
	{{0, 0, 0}, {0, 0, 1}, {-1, 0, 1}, {0, 0, 0}, {-1, 0, 0}, {-1, 0, 1}},
	{{1, 0, 0}, {1, 0, 1}, {0, 0, 1}, {1, 0, 0}, {0, 0, 0}, {0, 0, 1}},
}

// CoreEdges are evaluated for every voxel by the full-grid scan.
// They only reference neighbours at or below the voxel on each axis.
var CoreEdges = [3]int{0, 4, 8}

// Axis bits for voxels sitting on a grid maximum.
const (
	MaxX = 1 << iota
	MaxY
	MaxZ
)

// boundaryEdges reference neighbours past a grid maximum and are only
// evaluated by voxels on that maximum, so every edge of the shell is emitted once.
var boundaryEdges = []struct {
	axes  int
	edges []int
}{
	{MaxX, []int{2, 9}},
	{MaxY, []int{1, 5}},
	{MaxZ, []int{6, 10}},
	{MaxX | MaxY, []int{3}},
	{MaxX | MaxZ, []int{11}},
	{MaxY | MaxZ, []int{7}},
}

// Shell returns the MaxX/MaxY/MaxZ bits of the grid maxima idx lies on.
func Shell(idx, size [3]int) (axes int) {
	for i := range idx {
		if idx[i] == size[i]-1 {
			axes |= 1 << i
		}
	}

	return axes
}

// EdgesFor returns the edges the full-grid scan evaluates for the voxel at idx:
// the core edges plus the boundary edges its position on the shell enables.
func EdgesFor(idx, size [3]int) []int {
	edges := append(make([]int, 0, grid.EdgeCount), CoreEdges[:]...)
	axes := Shell(idx, size)

	for _, b := range boundaryEdges {
		if b.axes&^axes == 0 {
			edges = append(edges, b.edges...)
		}
	}

	return edges
}

// Triangle holds three contour positions.
type Triangle [3]mgl32.Vec3

// Pair holds the two candidate triangles of one edge.
// A triangle is only valid if all three of its source voxels exist and have a
// non-zero edge mask.
type Pair struct {
	Triangles [2]Triangle
	Valid     [2]bool
	// Missing lists the neighbour indices the source could not address.
	Missing [][3]int
}

// Count returns the number of valid triangles.
func (p Pair) Count() (n int) {
	for _, ok := range p.Valid {
		if ok {
			n++
		}
	}

	return n
}

// Offsets returns the neighbour offsets of edge.
// flip swaps n1 with n2 and n4 with n5, reversing the winding of both triangles.
func Offsets(edge int, flip bool) [6][3]int {
	offsets := Edges[edge]

	if flip {
		offsets[0], offsets[1] = offsets[1], offsets[0]
		offsets[3], offsets[4] = offsets[4], offsets[3]
	}

	return offsets
}

// Assemble resolves the triangles of edge around the voxel at idx.
// An edge outside [0, 12) yields an empty Pair.
func Assemble(src grid.Source, idx [3]int, edge int, flip bool) (p Pair) {
	if edge < 0 || edge >= grid.EdgeCount {
		return p
	}

	var valid [6]bool

	for i, off := range Offsets(edge, flip) {
		n := [3]int{idx[0] + off[0], idx[1] + off[1], idx[2] + off[2]}

		v, ok := src.VoxelAt(n[0], n[1], n[2])
		if !ok {
			p.Missing = append(p.Missing, n)

			continue
		}

		valid[i] = v.Contributes()
		p.Triangles[i/3][i%3] = v.ContourPosition
	}

	p.Valid[0] = valid[0] && valid[1] && valid[2]
	p.Valid[1] = valid[3] && valid[4] && valid[5]

	return p
}
