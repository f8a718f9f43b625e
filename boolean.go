package textemboss

import (
	"context"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// BoolOp is a boolean mesh combination operation.
type BoolOp int

const (
	// OpUnion fuses the tool into the base (emboss).
	OpUnion BoolOp = iota
	// OpDifference subtracts the tool from the base (engrave).
	OpDifference
)

func (o BoolOp) String() string {
	if o == OpDifference {
		return "DIFFERENCE"
	}
	return "UNION"
}

// A BooleanEngine combines two meshes with a boolean operation.
//
// Implementations may run out of process (BlenderEngine) or in process
// (MarchingEngine); the embedding pipeline depends only on this contract.
// Engines must treat their inputs as read-only.
type BooleanEngine interface {
	Combine(ctx context.Context, base, tool *model3d.Mesh, op BoolOp) (*model3d.Mesh, error)
}

// MarchingEngine is an in-process boolean engine. It interprets both
// meshes as solids, composes them with CSG, and re-extracts a mesh with
// marching cubes. The result is approximate at the configured grid
// resolution, but the engine has no external dependencies.
type MarchingEngine struct {
	// Delta is the marching cubes grid spacing. If zero or negative, 1% of
	// the combined bounding box's largest dimension is used.
	Delta float64
}

var _ BooleanEngine = (*MarchingEngine)(nil)

func (m *MarchingEngine) Combine(ctx context.Context, base, tool *model3d.Mesh,
	op BoolOp) (*model3d.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var solid model3d.Solid
	switch op {
	case OpUnion:
		solid = model3d.JoinedSolid{base.Solid(), tool.Solid()}
	case OpDifference:
		solid = &model3d.SubtractedSolid{Positive: base.Solid(), Negative: tool.Solid()}
	default:
		return nil, errors.Errorf("unsupported boolean operation %d", int(op))
	}
	delta := m.Delta
	if delta <= 0 {
		delta = solid.Max().Sub(solid.Min()).MaxCoord() / 100
	}
	out := model3d.MarchingCubesSearch(solid, delta, 8)
	if len(out.TriangleSlice()) == 0 {
		return nil, errors.Errorf("boolean %s produced an empty mesh", op)
	}
	return CleanMesh(out), nil
}

// combineWithFallback runs the two-tier combination strategy: a direct
// engine call first, then one retry with both operands voxel-solidified at
// the configured pitch. Exact booleans are numerically fragile on the
// near-coincident geometry a conformed tool creates; the voxel tier trades
// precision for combination safety.
func combineWithFallback(ctx context.Context, engine BooleanEngine,
	base, tool *model3d.Mesh, op BoolOp, cfg EmbedConfig, minDim float64) (*model3d.Mesh, error) {
	out, directErr := engine.Combine(ctx, base, tool, op)
	if directErr == nil {
		return out, nil
	}
	if !cfg.VoxelFallback {
		return nil, &CombineError{Op: op, Direct: directErr}
	}

	pitch := cfg.VoxelPitchPercent / 100 * minDim
	out, voxelErr := engine.Combine(ctx, VoxelSolidify(base, pitch), VoxelSolidify(tool, pitch), op)
	if voxelErr == nil {
		return out, nil
	}
	return nil, &CombineError{Op: op, Direct: directErr, Voxel: voxelErr}
}
