// Package contourtracer implements ray casting against the dual-contoured
// surface stored in a voxel grid.
package contourtracer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/collision"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/debugdraw"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/grid"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/topology"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/traversal"
)

// Sizes of the debug markers.
const (
	markerRadius     = float32(0.1)
	cellMarkerRadius = float32(0.05)
	pickNormalLength = float32(1)
	normalStart      = float32(0.1)
)

// Ray is a half-line with distance bounds.
// TMax == 0 means unbounded.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
	TMin      float32
	TMax      float32
}

func (r Ray) within(t float32) bool {
	return t >= r.TMin && (r.TMax == 0 || t <= r.TMax)
}

// normalizeDirection returns the unit direction, or false for zero-length,
// infinite or NaN vectors.
func normalizeDirection(d mgl32.Vec3) (mgl32.Vec3, bool) {
	l := d.Len()
	if l == 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
		return d, false
	}

	return d.Mul(1 / l), true
}

// Tracer casts rays against a grid.Source.
// A Tracer only reads its grid, casts with separate sessions may run concurrently.
type Tracer struct {
	grid grid.Source
	desc grid.Descriptor
	cfg  Config
}

// NewTracer returns a Tracer for g.
func NewTracer(g grid.Source, cfg Config) *Tracer {
	return &Tracer{
		grid: g,
		desc: g.Descriptor(),
		cfg:  cfg.withDefaults(),
	}
}

// Descriptor returns the geometry of the traced grid.
func (t *Tracer) Descriptor() grid.Descriptor {
	return t.desc
}

func (t *Tracer) logf(format string, args ...interface{}) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Printf(format, args...)
	}
}

// IntersectContour casts the picking ray from camPos through hitPos.
// Both points must be in grid-local space. The ray starts just past hitPos so
// it does not hit the picked surface itself.
// The session is reset before anything is drawn.
func (t *Tracer) IntersectContour(camPos, hitPos mgl32.Vec3, session *debugdraw.Session) (r collision.RayCastResult) {
	session.Reset()
	session.Sphere(camPos, markerRadius, debugdraw.Red)
	session.Line(camPos, hitPos, debugdraw.Red)

	dir, ok := normalizeDirection(hitPos.Sub(camPos))
	if !ok {
		t.logf("camera %v and pick %v do not define a ray", camPos, hitPos)

		return r
	}

	origin := hitPos.Add(dir.Mul(t.cfg.PickOffset))

	session.Sphere(origin, markerRadius, debugdraw.Green)
	session.Normal(origin, dir, normalStart, pickNormalLength, debugdraw.Green)

	r = t.CastRay(Ray{
		Origin:    origin,
		Direction: dir,
		TMax:      t.cfg.PickRange,
	}, session)

	if r.Hit {
		session.Sphere(r.Point, markerRadius, debugdraw.Magenta)
	}

	return r
}

// CastRay returns the hit of ray with the contoured surface closest to the ray's origin.
// T of the result is measured from ray.Origin and the normal faces ray.Origin.
//
// The ray is clipped to the grid boundary it points at and the grid is walked
// back towards ray.Origin. Every filled voxel on the way is tested against
// the triangles of its edges and each hit replaces the previous one.
// A hit within GrazingHitGuard of ray.Origin ends the cast and the previous
// hit is returned instead.
func (t *Tracer) CastRay(ray Ray, session *debugdraw.Session) (r collision.RayCastResult) {
	dir, ok := normalizeDirection(ray.Direction)
	if !ok {
		t.logf("invalid ray direction %v", ray.Direction)

		return r
	}

	if !collision.RayIntersectsAxisAlignedBoundingBox(ray.Origin, dir, t.desc.Min, t.desc.Max()).Hit {
		return r
	}

	entry, ok := ClipEntry(ray.Origin, dir, t.desc, t.cfg.EntryInset)

	session.Sphere(entry.Origin, markerRadius, debugdraw.Blue)
	session.Normal(entry.Origin, entry.Direction, normalStart, entry.Travel, debugdraw.Blue)

	if !ok {
		t.logf("entry point %v is outside the grid", entry.Origin)

		return r
	}

	var lastValid collision.RayCastResult

	w := traversal.NewWalker(entry.Origin, entry.Direction, t.desc, t.cfg.StepLimit)

	for cell, ok := w.Next(); ok; cell, ok = w.Next() {
		session.Box(t.desc.VoxelMin(cell.Index), t.desc.VoxelSize, debugdraw.Green)

		v, ok := t.grid.VoxelAt(cell.Index[0], cell.Index[1], cell.Index[2])
		if !ok || !v.Filled {
			continue
		}

		color := session.NextColor()
		nextVoxelT := cell.ExitT()

		session.Sphere(entry.Origin.Add(entry.Direction.Mul(cell.Entry)), cellMarkerRadius, color)
		session.Sphere(entry.Origin.Add(entry.Direction.Mul(nextVoxelT)), cellMarkerRadius, debugdraw.Red)

		res := t.intersectVoxel(entry.Origin, entry.Direction, v, nextVoxelT, color, session)
		if !res.Hit {
			continue
		}

		fromEntry := res.T
		res.T = res.Point.Sub(ray.Origin).Len()

		if res.Normal.Dot(dir) > 0 {
			res.Normal = res.Normal.Mul(-1)
		}

		if !ray.within(res.T) {
			continue
		}

		if fromEntry >= entry.Travel-t.cfg.GrazingHitGuard {
			t.logf("grazing hit at %v in voxel %v, keeping previous hit", res.Point, cell.Index)

			return lastValid
		}

		lastValid = res
	}

	if w.Visited() >= t.cfg.StepLimit && t.cfg.StepLimit > 0 {
		t.logf("step limit of %d reached", t.cfg.StepLimit)
	}

	return lastValid
}

// intersectVoxel tests the triangles of every edge of v and returns the
// closest hit with t in [0, tMax].
func (t *Tracer) intersectVoxel(origin, dir mgl32.Vec3, v grid.Voxel, tMax float32, color debugdraw.Color, session *debugdraw.Session) (closest collision.RayCastResult) {
	for edge := 0; edge < grid.EdgeCount; edge++ {
		if !v.HasEdge(edge) {
			continue
		}

		pair := topology.Assemble(t.grid, v.Coords, edge, false)

		for i, tri := range pair.Triangles {
			if !pair.Valid[i] {
				continue
			}

			session.Triangle(tri[0], tri[1], tri[2], color)

			res := collision.RayIntersectsTriangle(origin, dir, tri)
			if !res.Hit {
				continue
			}

			session.Sphere(res.Point, markerRadius, debugdraw.Gray)

			if res.T > tMax {
				continue
			}

			if !closest.Hit || res.T < closest.T {
				closest = res
			}
		}
	}

	return closest
}
