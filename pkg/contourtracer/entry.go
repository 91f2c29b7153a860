package contourtracer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/grid"
)

// Entry is the starting point of a grid walk.
type Entry struct {
	// Origin lies just inside the grid boundary the ray points at.
	Origin mgl32.Vec3
	// Direction is the reversed ray direction, pointing back at the caller's origin.
	Direction mgl32.Vec3
	// Travel is the distance from the caller's origin to Origin.
	Travel float32
}

// ClipEntry moves the ray at origin to the grid boundary plane it points at
// and reverses it, so the walk always starts on or inside the grid and heads
// back towards origin. Per axis the boundary is the max plane for positive and
// the min plane for negative direction components. The nearest of those planes
// is used and the point is pulled back by inset.
//
// ok is false if direction has no non-zero component or the resulting point
// does not lie inside the grid.
func ClipEntry(origin, direction mgl32.Vec3, desc grid.Descriptor, inset float32) (e Entry, ok bool) {
	max := desc.Max()
	dist := mgl32.InfPos

	for i := 0; i < 3; i++ {
		var d float32

		switch {
		case direction[i] > 0:
			d = (max[i] - origin[i]) / direction[i]
		case direction[i] < 0:
			d = (origin[i] - desc.Min[i]) / direction[i]
		default:
			continue
		}

		if d = mgl32.Abs(d); d < dist {
			dist = d
		}
	}

	if dist == mgl32.InfPos {
		return e, false
	}

	e.Origin = origin.Add(direction.Mul(dist - inset))
	e.Direction = direction.Mul(-1)
	e.Travel = e.Origin.Sub(origin).Len()

	return e, desc.Contains(desc.IndexOf(e.Origin))
}
