package debugdraw

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Kind is the type of a recorded primitive.
type Kind int

// Primitive kinds.
const (
	KindSphere Kind = iota
	KindLine
	KindBox
	KindTriangle
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindLine:
		return "line"
	case KindBox:
		return "box"
	case KindTriangle:
		return "triangle"
	}

	return "unknown"
}

// Primitive is a recorded draw call.
// Points holds the center for spheres, both ends for lines,
// min corner and size for boxes and the three corners for triangles.
type Primitive struct {
	Kind   Kind
	Color  Color
	Radius float32
	Points []mgl32.Vec3
}

// Recorder is an in-memory Sink.
type Recorder struct {
	next  Item
	order []Item
	live  map[Item]Primitive
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{live: make(map[Item]Primitive)}
}

func (r *Recorder) record(p Primitive) Item {
	r.next++
	r.order = append(r.order, r.next)
	r.live[r.next] = p

	return r.next
}

// DrawSphere implements Sink.
func (r *Recorder) DrawSphere(center mgl32.Vec3, radius float32, color Color) Item {
	return r.record(Primitive{Kind: KindSphere, Color: color, Radius: radius, Points: []mgl32.Vec3{center}})
}

// DrawLine implements Sink.
func (r *Recorder) DrawLine(from, to mgl32.Vec3, color Color) Item {
	return r.record(Primitive{Kind: KindLine, Color: color, Points: []mgl32.Vec3{from, to}})
}

// DrawBox implements Sink.
func (r *Recorder) DrawBox(min mgl32.Vec3, size mgl32.Vec3, color Color) Item {
	return r.record(Primitive{Kind: KindBox, Color: color, Points: []mgl32.Vec3{min, size}})
}

// DrawTriangle implements Sink.
func (r *Recorder) DrawTriangle(a, b, c mgl32.Vec3, color Color) Item {
	return r.record(Primitive{Kind: KindTriangle, Color: color, Points: []mgl32.Vec3{a, b, c}})
}

// Remove implements Sink.
func (r *Recorder) Remove(item Item) {
	delete(r.live, item)

	// drop removed items once they make up half of order
	if len(r.order) > 2*len(r.live) {
		r.compact()
	}
}

func (r *Recorder) compact() {
	kept := r.order[:0]

	for _, item := range r.order {
		if _, ok := r.live[item]; ok {
			kept = append(kept, item)
		}
	}

	r.order = kept
}

// Primitives returns the live primitives in draw order.
func (r *Recorder) Primitives() []Primitive {
	out := make([]Primitive, 0, len(r.live))

	for _, item := range r.order {
		if p, ok := r.live[item]; ok {
			out = append(out, p)
		}
	}

	return out
}

// Count returns the number of live primitives of kind k with color c.
func (r *Recorder) Count(k Kind, c Color) (n int) {
	for _, p := range r.live {
		if p.Kind == k && p.Color == c {
			n++
		}
	}

	return n
}

// Histogram counts the live primitives per kind.
func (r *Recorder) Histogram() map[Kind]int {
	h := make(map[Kind]int)

	for _, p := range r.live {
		h[p.Kind]++
	}

	return h
}

// Len returns the number of live primitives.
func (r *Recorder) Len() int {
	return len(r.live)
}
