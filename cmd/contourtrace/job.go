package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer"
)

// job describes one pick against a grid.
type job struct {
	// Grid is a file path, or a file name inside Dir, Bundles and VPKs if any
	// are set.
	Grid    string   `json:"grid"`
	Dir     string   `json:"dir,omitempty"`
	Bundles []string `json:"bundles,omitempty"`
	// VPKs are multi-part VPK base names, searched after the bundles.
	VPKs    []string `json:"vpks,omitempty"`

	Camera mgl32.Vec3 `json:"camera"`
	Hit    mgl32.Vec3 `json:"hit"`
	// World is the column-major object matrix of the grid. Camera and Hit are
	// in world space if it is set and in grid space otherwise.
	World *mgl32.Mat4 `json:"world,omitempty"`

	Surface  bool `json:"surface,omitempty"`
	FlipMask bool `json:"flipMask,omitempty"`

	Tuning tuning `json:"tuning"`
}

// tuning overrides contourtracer.DefaultConfig, unset fields keep the default.
type tuning struct {
	StepLimit       int      `json:"stepLimit,omitempty"`
	GrazingHitGuard *float32 `json:"grazingHitGuard,omitempty"`
	EntryInset      *float32 `json:"entryInset,omitempty"`
	PickOffset      *float32 `json:"pickOffset,omitempty"`
	PickRange       *float32 `json:"pickRange,omitempty"`
}

func loadJob(path string) (j job, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return j, errors.Wrapf(err, "failed to read job %q", path)
	}

	if err := json.Unmarshal(data, &j); err != nil {
		return j, errors.Wrapf(err, "failed to parse job %q", path)
	}

	return j, nil
}

func (j job) archived() bool {
	return j.Dir != "" || len(j.Bundles) > 0 || len(j.VPKs) > 0
}

func (t tuning) config() contourtracer.Config {
	cfg := contourtracer.DefaultConfig()

	if t.StepLimit > 0 {
		cfg.StepLimit = t.StepLimit
	}

	if t.GrazingHitGuard != nil {
		cfg.GrazingHitGuard = *t.GrazingHitGuard
	}

	if t.EntryInset != nil {
		cfg.EntryInset = *t.EntryInset
	}

	if t.PickOffset != nil {
		cfg.PickOffset = *t.PickOffset
	}

	if t.PickRange != nil {
		cfg.PickRange = *t.PickRange
	}

	return cfg
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (v mgl32.Vec3, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, errors.Errorf("expected x,y,z, got %q", s)
	}

	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return v, errors.Wrapf(err, "invalid component %d of %q", i, s)
		}

		v[i] = float32(f)
	}

	return v, nil
}
