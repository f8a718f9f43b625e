package textemboss

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// countingEngine fails the first failures calls and then delegates to a
// fixed result mesh.
type countingEngine struct {
	failures int
	calls    int
	result   *model3d.Mesh
}

func (c *countingEngine) Combine(ctx context.Context, base, tool *model3d.Mesh,
	op BoolOp) (*model3d.Mesh, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, errors.New("synthetic failure")
	}
	return c.result, nil
}

func TestMarchingEngineUnion(t *testing.T) {
	a := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	b := model3d.NewMeshRect(model3d.XYZ(0.5, 0.5, 0.5), model3d.XYZ(1.5, 1.5, 1.5))

	engine := &MarchingEngine{Delta: 0.05}
	out, err := engine.Combine(context.Background(), a, b, OpUnion)
	if err != nil {
		t.Fatal(err)
	}

	min, max := out.Min(), out.Max()
	if math.Abs(min.X) > 0.1 || math.Abs(max.X-1.5) > 0.1 {
		t.Errorf("union bounds off along X: %g..%g", min.X, max.X)
	}
	solid := &paritySolid{Collider: model3d.MeshToCollider(out)}
	for _, c := range []model3d.Coord3D{
		model3d.XYZ(0.25, 0.25, 0.25),
		model3d.XYZ(0.75, 0.75, 0.75),
		model3d.XYZ(1.25, 1.25, 1.25),
	} {
		if !solid.Contains(c) {
			t.Errorf("union should contain %v", c)
		}
	}
	if solid.Contains(model3d.XYZ(1.25, 0.25, 0.25)) {
		t.Error("union contains a point in neither operand")
	}
}

func TestMarchingEngineDifference(t *testing.T) {
	a := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	b := model3d.NewMeshRect(model3d.XYZ(0.5, 0.5, 0.5), model3d.XYZ(1.5, 1.5, 1.5))

	engine := &MarchingEngine{Delta: 0.05}
	out, err := engine.Combine(context.Background(), a, b, OpDifference)
	if err != nil {
		t.Fatal(err)
	}

	solid := &paritySolid{Collider: model3d.MeshToCollider(out)}
	if !solid.Contains(model3d.XYZ(0.25, 0.25, 0.25)) {
		t.Error("difference lost the untouched corner")
	}
	if solid.Contains(model3d.XYZ(0.9, 0.9, 0.9)) {
		t.Error("difference kept the subtracted corner")
	}
}

func TestMarchingEngineCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	engine := &MarchingEngine{Delta: 0.1}
	if _, err := engine.Combine(ctx, a, a, OpUnion); err == nil {
		t.Fatal("expected a canceled-context error")
	}
}

func TestCombineWithFallbackRetries(t *testing.T) {
	base := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	tool := model3d.NewMeshRect(model3d.XYZ(0.4, 0.4, 0.9), model3d.XYZ(0.6, 0.6, 1.1))
	want := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(2, 2, 2))

	cfg := DefaultEmbedConfig(ModeEmboss, 5)
	cfg.VoxelPitchPercent = 25

	engine := &countingEngine{failures: 1, result: want}
	out, err := combineWithFallback(context.Background(), engine, base, tool, OpUnion, cfg, 1)
	if err != nil {
		t.Fatal(err)
	}
	if engine.calls != 2 {
		t.Errorf("expected a direct call plus one voxel retry, got %d calls", engine.calls)
	}
	if out != want {
		t.Error("fallback did not return the retry result")
	}
}

func TestCombineWithFallbackDisabled(t *testing.T) {
	base := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	cfg := DefaultEmbedConfig(ModeEmboss, 5)
	cfg.VoxelFallback = false

	engine := &countingEngine{failures: 100}
	_, err := combineWithFallback(context.Background(), engine, base, base, OpUnion, cfg, 1)
	if err == nil {
		t.Fatal("expected an error with the fallback disabled")
	}
	var combineErr *CombineError
	if !errors.As(err, &combineErr) {
		t.Fatalf("expected *CombineError, got %T: %v", err, err)
	}
	if combineErr.Voxel != nil {
		t.Error("voxel retry ran with the fallback disabled")
	}
	if combineErr.Direct == nil {
		t.Error("direct error missing from CombineError")
	}
	if engine.calls != 1 {
		t.Errorf("expected exactly one engine call, got %d", engine.calls)
	}
}

func TestCombineWithFallbackBothFail(t *testing.T) {
	base := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	cfg := DefaultEmbedConfig(ModeEmboss, 5)
	cfg.VoxelPitchPercent = 25

	engine := &countingEngine{failures: 100}
	_, err := combineWithFallback(context.Background(), engine, base, base, OpUnion, cfg, 1)
	var combineErr *CombineError
	if !errors.As(err, &combineErr) {
		t.Fatalf("expected *CombineError, got %T: %v", err, err)
	}
	if combineErr.Direct == nil || combineErr.Voxel == nil {
		t.Error("both tiers should report their errors")
	}
}

func TestBoolOpString(t *testing.T) {
	if OpUnion.String() != "UNION" || OpDifference.String() != "DIFFERENCE" {
		t.Errorf("unexpected op names: %s, %s", OpUnion, OpDifference)
	}
}
