package textemboss

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/unixpickle/model3d/model3d"
)

func TestGLBRoundTrip(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 2, 3))
	path := filepath.Join(t.TempDir(), "box.glb")

	color := [4]float64{1, 0.5, 0, 1}
	if err := SaveGLB(path, box, &color); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadGLB(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := len(loaded.TriangleSlice()), 12; got != want {
		t.Errorf("expected %d faces, got %d", want, got)
	}
	if loaded.Min().Sub(box.Min()).Norm() > 1e-5 ||
		loaded.Max().Sub(box.Max()).Norm() > 1e-5 {
		t.Errorf("bounds changed: %v..%v", loaded.Min(), loaded.Max())
	}
}

func TestGLBRoundTripNoColor(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(-1, -1, -1), model3d.XYZ(1, 1, 1))
	path := filepath.Join(t.TempDir(), "box.glb")
	if err := SaveGLB(path, box, nil); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadGLB(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.TriangleSlice()) != 12 {
		t.Errorf("expected 12 faces, got %d", len(loaded.TriangleSlice()))
	}
}

func TestLoadGLBNodeTransforms(t *testing.T) {
	// A unit box under a node with scale 2, a 90 degree rotation about Z,
	// and a translation of 5 along X. Scaling maps the box to [0,2]^3, the
	// rotation sends (x,y) to (-y,x), and the translation shifts X, so the
	// loaded bounds must be (3,0,0)..(5,2,2).
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	path := filepath.Join(t.TempDir(), "node.glb")
	if err := SaveGLB(path, box, nil); err != nil {
		t.Fatal(err)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s := math.Sqrt2 / 2
	doc.Nodes[0].Translation = [3]float64{5, 0, 0}
	doc.Nodes[0].Rotation = [4]float64{0, 0, s, s}
	doc.Nodes[0].Scale = [3]float64{2, 2, 2}
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadGLB(path)
	if err != nil {
		t.Fatal(err)
	}
	wantMin := model3d.XYZ(3, 0, 0)
	wantMax := model3d.XYZ(5, 2, 2)
	if loaded.Min().Sub(wantMin).Norm() > 1e-4 ||
		loaded.Max().Sub(wantMax).Norm() > 1e-4 {
		t.Errorf("transformed bounds %v..%v, want %v..%v",
			loaded.Min(), loaded.Max(), wantMin, wantMax)
	}
}

func TestLoadGLBMatrixNode(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	path := filepath.Join(t.TempDir(), "matrix.glb")
	if err := SaveGLB(path, box, nil); err != nil {
		t.Fatal(err)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	m := mat4Identity()
	m[12], m[13], m[14] = 1, 2, 3
	doc.Nodes[0].Matrix = m
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadGLB(path)
	if err != nil {
		t.Fatal(err)
	}
	wantMin := model3d.XYZ(1, 2, 3)
	wantMax := model3d.XYZ(2, 3, 4)
	if loaded.Min().Sub(wantMin).Norm() > 1e-4 ||
		loaded.Max().Sub(wantMax).Norm() > 1e-4 {
		t.Errorf("matrix-node bounds %v..%v, want %v..%v",
			loaded.Min(), loaded.Max(), wantMin, wantMax)
	}
}

func TestSaveGLBEmptyMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.glb")
	if err := SaveGLB(path, model3d.NewMesh(), nil); err == nil {
		t.Fatal("expected an error for an empty mesh")
	}
}

func TestLoadMeshFileSTL(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	path := filepath.Join(t.TempDir(), "box.stl")
	if err := box.SaveGroupedSTL(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadMeshFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(loaded.TriangleSlice()), 12; got != want {
		t.Errorf("expected %d faces, got %d", want, got)
	}
	if loaded.Min().Sub(box.Min()).Norm() > 1e-5 ||
		loaded.Max().Sub(box.Max()).Norm() > 1e-5 {
		t.Errorf("bounds changed: %v..%v", loaded.Min(), loaded.Max())
	}
}

func TestLoadMeshFileUnsupported(t *testing.T) {
	if _, err := LoadMeshFile("model.obj"); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestLoadMeshFileGLB(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	path := filepath.Join(t.TempDir(), "box.glb")
	if err := SaveGLB(path, box, nil); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadMeshFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.TriangleSlice()) != 12 {
		t.Errorf("expected 12 faces, got %d", len(loaded.TriangleSlice()))
	}
}
