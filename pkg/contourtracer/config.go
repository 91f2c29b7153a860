package contourtracer

import (
	"log"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/traversal"
)

const (
	// GrazingHitGuard is the default distance from the end of a cast's travel
	// within which a hit is considered a grazing or tangent artifact.
	// A cast stops at such a hit and returns the hit accepted before it.
	GrazingHitGuard = float32(0.1)

	// EntryInset pulls the clipped entry point back inside the grid.
	EntryInset = float32(0.01)

	// PickOffset moves the origin of a picking ray past the picked surface.
	PickOffset = float32(0.01)

	// PickRange is the maximum hit distance of a picking ray.
	PickRange = float32(1000)
)

// Config holds the tuning parameters of a Tracer.
// A Config whose tuning fields are all zero is replaced by DefaultConfig, so
// Config{Logger: l} is a valid configuration. Otherwise start from
// DefaultConfig and override single fields.
type Config struct {
	// StepLimit caps the number of cells a cast visits.
	StepLimit       int
	GrazingHitGuard float32
	EntryInset      float32
	PickOffset      float32
	PickRange       float32
	// Logger receives cast diagnostics. Nil disables logging.
	Logger *log.Logger
}

// DefaultConfig returns the configuration the tracer was tuned with.
func DefaultConfig() Config {
	return Config{
		StepLimit:       traversal.DefaultStepLimit,
		GrazingHitGuard: GrazingHitGuard,
		EntryInset:      EntryInset,
		PickOffset:      PickOffset,
		PickRange:       PickRange,
	}
}

// withDefaults fills a zero tuning with DefaultConfig and keeps the logger.
func (c Config) withDefaults() Config {
	if c != (Config{Logger: c.Logger}) {
		return c
	}

	d := DefaultConfig()
	d.Logger = c.Logger

	return d
}
