package contourtracer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/grid"
)

// neighbourMask marks a voxel as carrying a contour vertex without enabling
// any edge the full-grid scan evaluates for interior voxels.
const neighbourMask = 1 << 1

func newGrid(t *testing.T, size, extent [3]int) *grid.Dense {
	t.Helper()

	g, err := grid.NewDense(grid.Descriptor{VoxelSize: 1, Size: size}, extent)
	require.NoError(t, err)

	return g
}

func set(t *testing.T, g *grid.Dense, idx [3]int, contour mgl32.Vec3, filled bool, mask uint16) {
	t.Helper()

	require.True(t, g.Set(grid.Voxel{
		Coords:          idx,
		Filled:          filled,
		ContourPosition: contour,
		EdgeMask:        mask,
	}))
}

// addQuad fills voxel (1,1,z) with the core edges enabled and gives the three
// voxels around its edge 0 a contour vertex, forming a quad at height z+0.5
// spanning x and y in [0.5, 1.5].
func addQuad(t *testing.T, g *grid.Dense, z int) {
	t.Helper()

	h := float32(z) + 0.5

	set(t, g, [3]int{1, 1, z}, mgl32.Vec3{1.5, 1.5, h}, true, 1<<0|1<<4|1<<8)
	set(t, g, [3]int{0, 1, z}, mgl32.Vec3{0.5, 1.5, h}, false, neighbourMask)
	set(t, g, [3]int{0, 0, z}, mgl32.Vec3{0.5, 0.5, h}, false, neighbourMask)
	set(t, g, [3]int{1, 0, z}, mgl32.Vec3{1.5, 0.5, h}, false, neighbourMask)
}

// quadFixture is a 3x3x3 grid with a single quad at z = 1.5.
func quadFixture(t *testing.T) *grid.Dense {
	t.Helper()

	g := newGrid(t, [3]int{3, 3, 3}, [3]int{})
	addQuad(t, g, 1)

	return g
}

// layeredFixture adds a second quad at z = 0.5 below the one of quadFixture.
func layeredFixture(t *testing.T) *grid.Dense {
	t.Helper()

	g := quadFixture(t)
	addQuad(t, g, 0)

	return g
}

// boundaryFixture is a 2x2x2 grid whose far corner voxel only has the x-max
// boundary edge 2. The quad around it reaches into the closing layer at x = 2.
func boundaryFixture(t *testing.T, extent [3]int) *grid.Dense {
	t.Helper()

	g := newGrid(t, [3]int{2, 2, 2}, extent)

	set(t, g, [3]int{1, 1, 1}, mgl32.Vec3{1.5, 1.5, 1.5}, true, 1<<2)
	set(t, g, [3]int{1, 0, 1}, mgl32.Vec3{1.5, 0.5, 1.5}, false, neighbourMask)

	if extent[0] > 2 {
		set(t, g, [3]int{2, 1, 1}, mgl32.Vec3{2.5, 1.5, 1.5}, false, neighbourMask)
		set(t, g, [3]int{2, 0, 1}, mgl32.Vec3{2.5, 0.5, 1.5}, false, neighbourMask)
	}

	return g
}

func assertVecInDelta(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()

	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, msgAndArgs...)
	}
}
