package contourtracer

import (
	"fmt"
	"strings"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/debugdraw"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/grid"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/topology"
)

// ExtractOptions controls ExtractSurface.
type ExtractOptions struct {
	// SkipBoundaryEdges only evaluates the core edges, leaving the grid's
	// outer shell open.
	SkipBoundaryEdges bool
	// ApplyFlipMask reverses the winding of edges whose flip bit is set.
	ApplyFlipMask bool
}

// Mesh is a flat triangle soup. Triangles shared by neighbouring edges are
// emitted once per edge and not deduplicated.
type Mesh struct {
	Triangles []topology.Triangle
}

// Len returns the number of triangles.
func (m *Mesh) Len() int {
	return len(m.Triangles)
}

// Draw sends the wireframe of the mesh to session.
func (m *Mesh) Draw(session *debugdraw.Session, color debugdraw.Color) {
	for _, tri := range m.Triangles {
		session.Triangle(tri[0], tri[1], tri[2], color)
	}
}

// MissingNeighborsError is returned alongside a partial Mesh when enabled
// edges reference voxels the source cannot address.
type MissingNeighborsError struct {
	missing [][3]int
}

// Neighbors returns the unaddressable voxel indices in scan order.
func (e MissingNeighborsError) Neighbors() [][3]int {
	return e.missing
}

func (e MissingNeighborsError) Error() string {
	parts := make([]string, 0, len(e.missing))
	for _, idx := range e.missing {
		parts = append(parts, fmt.Sprintf("%d,%d,%d", idx[0], idx[1], idx[2]))
	}

	return fmt.Sprintf(`missing neighbour voxels: ("%s")`, strings.Join(parts, `", "`))
}

// ExtractSurface scans every voxel of src and collects the triangles of the
// edges enabled by its edge mask. Interior voxels evaluate the core edges,
// voxels on a grid maximum additionally evaluate the boundary edges of that face.
//
// If enabled edges reference voxels src cannot address the affected triangles
// are skipped and the mesh is returned together with a MissingNeighborsError.
func ExtractSurface(src grid.Source, opts ExtractOptions) (*Mesh, error) {
	var (
		mesh    = new(Mesh)
		missing [][3]int
		seen    = make(map[[3]int]bool)
	)

	size := src.Descriptor().Size

	for x := 0; x < size[0]; x++ {
		for y := 0; y < size[1]; y++ {
			for z := 0; z < size[2]; z++ {
				v, ok := src.VoxelAt(x, y, z)
				if !ok || !v.Contributes() {
					continue
				}

				edges := topology.CoreEdges[:]
				if !opts.SkipBoundaryEdges {
					edges = topology.EdgesFor(v.Coords, size)
				}

				for _, edge := range edges {
					if !v.HasEdge(edge) {
						continue
					}

					pair := topology.Assemble(src, v.Coords, edge, opts.ApplyFlipMask && v.Flipped(edge))

					for _, idx := range pair.Missing {
						if !seen[idx] {
							seen[idx] = true
							missing = append(missing, idx)
						}
					}

					for i, tri := range pair.Triangles {
						if pair.Valid[i] {
							mesh.Triangles = append(mesh.Triangles, tri)
						}
					}
				}
			}
		}
	}

	if len(missing) > 0 {
		return mesh, MissingNeighborsError{
			missing: missing,
		}
	}

	return mesh, nil
}
