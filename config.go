package textemboss

import (
	"time"

	"github.com/pkg/errors"
)

// Mode selects whether text is raised out of the surface or cut into it.
type Mode int

const (
	// ModeEmboss raises text outward from the surface (boolean union).
	ModeEmboss Mode = iota
	// ModeEngrave cuts text into the surface (boolean difference).
	ModeEngrave
)

func (m Mode) String() string {
	switch m {
	case ModeEmboss:
		return "emboss"
	case ModeEngrave:
		return "engrave"
	default:
		return "unknown"
	}
}

// Op returns the boolean operation that realizes the mode.
func (m Mode) Op() BoolOp {
	if m == ModeEngrave {
		return OpDifference
	}
	return OpUnion
}

// ParseMode parses "emboss" or "engrave".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "emboss":
		return ModeEmboss, nil
	case "engrave":
		return ModeEngrave, nil
	default:
		return 0, errors.Errorf("unknown mode %q (want emboss or engrave)", s)
	}
}

// EmbedConfig controls a single embedding operation.
//
// All *Percent fields are fractions of the target mesh's minimum
// bounding-box dimension, so the same configuration behaves consistently
// across targets of different scales.
type EmbedConfig struct {
	Mode         Mode    `toml:"-"`
	DepthPercent float64 `toml:"-"`

	// Placement search.
	Tries              int     `toml:"tries"`
	Margin             float64 `toml:"margin"`
	PatchRadiusPercent float64 `toml:"patch_radius_percent"`
	RaySteps           int     `toml:"ray_steps"`
	LiftPercent        float64 `toml:"lift_percent"`

	// EpsPercent is a tiny push of the conformed tool along the normal so
	// the boolean operands never share coplanar geometry.
	EpsPercent float64 `toml:"eps_percent"`

	// Voxel fallback for combination-unsafe meshes.
	VoxelFallback     bool    `toml:"voxel_fallback"`
	VoxelPitchPercent float64 `toml:"voxel_pitch_percent"`

	// CombineTimeout bounds a single boolean engine invocation.
	// Zero means the engine's own default.
	CombineTimeout time.Duration `toml:"combine_timeout"`
}

// DefaultEmbedConfig returns the recommended configuration for the given
// mode and extrusion depth (as a percentage of the target's minimum
// bounding-box dimension).
func DefaultEmbedConfig(mode Mode, depthPercent float64) EmbedConfig {
	return EmbedConfig{
		Mode:               mode,
		DepthPercent:       depthPercent,
		Tries:              200,
		Margin:             0.85,
		PatchRadiusPercent: 12.0,
		RaySteps:           40,
		LiftPercent:        1.0,
		EpsPercent:         0.2,
		VoxelFallback:      true,
		VoxelPitchPercent:  3.0,
	}
}

// Validate reports the first configuration problem, if any.
func (c EmbedConfig) Validate() error {
	if c.Mode != ModeEmboss && c.Mode != ModeEngrave {
		return errors.Errorf("invalid mode %d", int(c.Mode))
	}
	if c.DepthPercent <= 0 {
		return errors.Errorf("depth percent must be > 0, got %g", c.DepthPercent)
	}
	if c.Tries < 1 {
		return errors.Errorf("tries must be >= 1, got %d", c.Tries)
	}
	if c.Margin <= 0 || c.Margin > 1 {
		return errors.Errorf("margin must be in (0, 1], got %g", c.Margin)
	}
	if c.PatchRadiusPercent <= 0 {
		return errors.Errorf("patch radius percent must be > 0, got %g", c.PatchRadiusPercent)
	}
	if c.RaySteps < 1 {
		return errors.Errorf("ray steps must be >= 1, got %d", c.RaySteps)
	}
	if c.LiftPercent <= 0 {
		return errors.Errorf("lift percent must be > 0, got %g", c.LiftPercent)
	}
	if c.EpsPercent < 0 {
		return errors.Errorf("eps percent must be >= 0, got %g", c.EpsPercent)
	}
	if c.VoxelFallback && c.VoxelPitchPercent <= 0 {
		return errors.Errorf("voxel pitch percent must be > 0, got %g", c.VoxelPitchPercent)
	}
	if c.CombineTimeout < 0 {
		return errors.Errorf("combine timeout must be >= 0, got %v", c.CombineTimeout)
	}
	return nil
}
