package contourtracer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Trace is the result of tracing a segment against the contour.
type Trace struct {
	// Fraction of the segment travelled before the hit, 1 if nothing was hit.
	Fraction float32
	EndPos   mgl32.Vec3
	Normal   mgl32.Vec3
	Hit      bool
}

// IsVisible returns true if the segment between origin and destination does
// not cross the contour.
func (t *Tracer) IsVisible(origin, destination mgl32.Vec3) bool {
	return t.TraceSegment(origin, destination).Fraction >= 1
}

// TraceSegment traces the segment from origin to destination.
func (t *Tracer) TraceSegment(origin, destination mgl32.Vec3) Trace {
	out := Trace{
		Fraction: 1,
		EndPos:   destination,
	}

	delta := destination.Sub(origin)

	length := delta.Len()
	if length == 0 {
		return out
	}

	r := t.CastRay(Ray{Origin: origin, Direction: delta, TMax: length}, nil)
	if !r.Hit {
		return out
	}

	out.Fraction = r.T / length
	out.EndPos = r.Point
	out.Normal = r.Normal
	out.Hit = true

	return out
}
