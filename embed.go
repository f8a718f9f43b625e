package textemboss

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// An Embedder runs the full embedding pipeline: clean the target, search
// for a placement, conform the text solid onto the surface, and fuse the
// two through a boolean engine.
type Embedder struct {
	// Engine performs boolean combination. Required.
	Engine BooleanEngine

	// Logger receives per-attempt progress. Nil discards all output.
	Logger *log.Logger

	// Rand drives surface sampling and tangent frame construction. Nil
	// means a time-seeded source; supply a seeded source for reproducible
	// placements.
	Rand *rand.Rand
}

// An EmbedResult is the outcome of a successful embedding, carrying the
// combined mesh plus the identity needed to name the output.
type EmbedResult struct {
	Mesh *model3d.Mesh

	Text         string
	Mode         Mode
	DepthPercent float64

	// Attempts is the number of placement attempts consumed, and Scale is
	// the footprint scale applied at the winning placement.
	Attempts int
	Scale    float64
}

// EmbedText embosses or engraves the given text onto the target mesh.
//
// The placement search, conforming, and combination all happen inside a
// single bounded loop: a placement whose combination fails is abandoned
// and a fresh one is tried, since a different patch may avoid the
// numerical conditions that broke the boolean. After cfg.Tries attempts
// the operation fails with a *PlacementExhaustedError carrying the most
// recent diagnostics.
func (e *Embedder) EmbedText(ctx context.Context, target *model3d.Mesh,
	mesher TextMesher, text string, cfg EmbedConfig) (*EmbedResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if e.Engine == nil {
		return nil, errors.New("no boolean engine configured")
	}
	// A misconfigured engine is a fatal configuration problem, not a
	// per-placement failure; surface it before spending the tries budget.
	if v, ok := e.Engine.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rng := e.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	base := CleanMesh(target)
	if len(base.TriangleSlice()) == 0 {
		return nil, errors.New("target mesh has no faces after cleaning")
	}
	minDim := MinExtent(base)
	if minDim <= 0 {
		return nil, errors.New("target mesh has a degenerate bounding box")
	}

	depth := cfg.DepthPercent / 100 * minDim
	radius := cfg.PatchRadiusPercent / 100 * minDim
	lift := cfg.LiftPercent / 100 * minDim
	eps := cfg.EpsPercent / 100 * minDim

	// The text block is generated once at unit depth and height, then
	// rescaled per placement.
	textMesh, err := mesher.TextMesh(text, 1, 1)
	if err != nil {
		return nil, errors.Wrap(err, "generate text mesh")
	}
	textMesh = CleanMesh(textMesh)
	textSize := textMesh.Max().Sub(textMesh.Min())
	w2d, h2d := textSize.X, textSize.Y
	if w2d < 1e-9 || h2d < 1e-9 {
		return nil, errors.Errorf("text mesh has a near-zero footprint (%gx%g)", w2d, h2d)
	}

	collider := model3d.MeshToCollider(base)
	sampler, err := newSurfaceSampler(base)
	if err != nil {
		return nil, err
	}

	logger.Info("embedding text",
		"text", text, "mode", cfg.Mode, "depth", depth, "footprint_w", w2d, "footprint_h", h2d)

	var lastW, lastH float64
	var lastCombine error
	for attempt := 1; attempt <= cfg.Tries; attempt++ {
		cand, ok := sampleCandidate(sampler, collider, rng, w2d, h2d,
			radius, cfg.RaySteps, lift, cfg.Margin)
		lastW, lastH = cand.Width, cand.Height
		if !ok {
			continue
		}
		logger.Debug("placement candidate accepted",
			"attempt", attempt, "width", cand.Width, "height", cand.Height, "scale", cand.Scale)

		tool := scaleFootprint(textMesh, cand.Scale, depth)
		tool = ConformToSurface(tool, collider, cand.Frame, lift, cfg.Mode)

		// Tiny push along the normal for boolean stability.
		push := eps
		if cfg.Mode == ModeEngrave {
			push = -eps
		}
		tool = tool.Translate(cand.Frame.Normal.Scale(push))

		combined, err := combineWithFallback(ctx, e.Engine, base, tool, cfg.Mode.Op(), cfg, minDim)
		if err != nil {
			lastCombine = err
			logger.Warn("combination failed; trying another placement",
				"attempt", attempt, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		logger.Info("embedding succeeded", "attempts", attempt, "scale", cand.Scale)
		return &EmbedResult{
			Mesh:         combined,
			Text:         text,
			Mode:         cfg.Mode,
			DepthPercent: cfg.DepthPercent,
			Attempts:     attempt,
			Scale:        cand.Scale,
		}, nil
	}

	return nil, &PlacementExhaustedError{
		Tries:       cfg.Tries,
		LastWidth:   lastW,
		LastHeight:  lastH,
		LastCombine: lastCombine,
	}
}

// scaleFootprint scales the unit text block's footprint by s and its
// extrusion axis to the world depth.
func scaleFootprint(m *model3d.Mesh, s, depth float64) *model3d.Mesh {
	return m.MapCoords(func(c model3d.Coord3D) model3d.Coord3D {
		return model3d.XYZ(c.X*s, c.Y*s, c.Z*depth)
	})
}
