// Package debugdraw forwards debug primitives of a ray cast to a host scene.
package debugdraw

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a 0xRRGGBB value.
type Color uint32

// Colors used by the tracer.
const (
	Red     Color = 0xff0000
	Green   Color = 0x00ff00
	Blue    Color = 0x0000ff
	Yellow  Color = 0xffff00
	Magenta Color = 0xff00ff
	Cyan    Color = 0x00ffff
	Gray    Color = 0x555555
)

// Palette is cycled through for each filled voxel a cast tests.
var Palette = [...]Color{Red, Green, Blue, Yellow, Magenta, Cyan}

// Item identifies a primitive added to a Sink.
type Item uint64

// Sink owns the lifecycle of primitives in the host scene.
type Sink interface {
	DrawSphere(center mgl32.Vec3, radius float32, color Color) Item
	DrawLine(from, to mgl32.Vec3, color Color) Item
	DrawBox(min mgl32.Vec3, size mgl32.Vec3, color Color) Item
	DrawTriangle(a, b, c mgl32.Vec3, color Color) Item
	Remove(item Item)
}

// Session tracks the items drawn for one cast so the next cast can remove them.
// Points passed to a Session are in grid-local space and are transformed to
// world space before reaching the Sink.
// A nil *Session is valid and draws nothing. A Session is not safe for concurrent use.
type Session struct {
	sink      Sink
	transform mgl32.Mat4
	items     []Item
	color     int
}

// NewSession returns a session drawing to sink with an identity transform.
func NewSession(sink Sink) *Session {
	return &Session{
		sink:      sink,
		transform: mgl32.Ident4(),
	}
}

// SetTransform sets the local-to-world matrix applied to every primitive.
func (s *Session) SetTransform(m mgl32.Mat4) {
	if s == nil {
		return
	}

	s.transform = m
}

func (s *Session) enabled() bool {
	return s != nil && s.sink != nil
}

func (s *Session) world(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, s.transform)
}

func (s *Session) add(item Item) {
	s.items = append(s.items, item)
}

// Reset removes every item drawn so far and restarts the palette.
func (s *Session) Reset() {
	if !s.enabled() {
		return
	}

	for _, item := range s.items {
		s.sink.Remove(item)
	}

	s.items = s.items[:0]
	s.color = 0
}

// Len returns the number of items currently drawn.
func (s *Session) Len() int {
	if s == nil {
		return 0
	}

	return len(s.items)
}

// NextColor advances the palette and returns the new color.
func (s *Session) NextColor() Color {
	if s == nil {
		return Palette[0]
	}

	s.color = (s.color + 1) % len(Palette)

	return Palette[s.color]
}

// Sphere draws a sphere around p.
func (s *Session) Sphere(p mgl32.Vec3, radius float32, color Color) {
	if !s.enabled() {
		return
	}

	s.add(s.sink.DrawSphere(s.world(p), radius, color))
}

// Line draws a segment from a to b.
func (s *Session) Line(a, b mgl32.Vec3, color Color) {
	if !s.enabled() {
		return
	}

	s.add(s.sink.DrawLine(s.world(a), s.world(b), color))
}

// Normal draws the part of the ray from p along dir between from and to.
func (s *Session) Normal(p, dir mgl32.Vec3, from, to float32, color Color) {
	if !s.enabled() {
		return
	}

	worldP := s.world(p)
	worldDir := s.world(p.Add(dir)).Sub(worldP)

	if worldDir.Len() > 0 {
		worldDir = worldDir.Normalize()
	}

	s.add(s.sink.DrawLine(worldP.Add(worldDir.Mul(from)), worldP.Add(worldDir.Mul(to)), color))
}

// Box draws the cube with the given min corner and edge length.
func (s *Session) Box(min mgl32.Vec3, size float32, color Color) {
	if !s.enabled() {
		return
	}

	worldMin := s.world(min)
	worldMax := s.world(min.Add(mgl32.Vec3{size, size, size}))

	s.add(s.sink.DrawBox(worldMin, worldMax.Sub(worldMin), color))
}

// Triangle draws the outline of a triangle.
func (s *Session) Triangle(a, b, c mgl32.Vec3, color Color) {
	if !s.enabled() {
		return
	}

	s.add(s.sink.DrawTriangle(s.world(a), s.world(b), s.world(c), color))
}
