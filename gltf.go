package textemboss

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/unixpickle/model3d/model3d"
)

// SaveGLB writes a mesh as a single-node binary glTF scene. If color is
// non-nil it is attached as a flat PBR base color (RGBA in [0, 1]).
func SaveGLB(path string, m *model3d.Mesh, color *[4]float64) error {
	indexOf := map[model3d.Coord3D]uint32{}
	var positions [][3]float32
	var indices []uint32
	m.Iterate(func(t *model3d.Triangle) {
		for _, c := range t {
			idx, ok := indexOf[c]
			if !ok {
				idx = uint32(len(positions))
				indexOf[c] = idx
				positions = append(positions, [3]float32{
					float32(c.X), float32(c.Y), float32(c.Z)})
			}
			indices = append(indices, idx)
		}
	})
	if len(indices) == 0 {
		return errors.New("refusing to export an empty mesh")
	}

	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
		Attributes: map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
		},
	}
	if color != nil {
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: "flat",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: color,
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(0.6),
			},
		})
		prim.Material = gltf.Index(len(doc.Materials) - 1)
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Primitives: []*gltf.Primitive{prim}})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	return errors.Wrapf(gltf.SaveBinary(doc, path), "save %s", path)
}

// LoadGLB reads every mesh instantiated by a glTF binary scene into one
// triangle mesh, flattening node transforms into world space. Meshes that
// no node references are appended untransformed, so a bare mesh container
// still loads.
func LoadGLB(path string) (*model3d.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	res := model3d.NewMesh()
	instantiated := map[int]bool{}
	var walk func(nodeIdx int, parent [16]float64) error
	walk = func(nodeIdx int, parent [16]float64) error {
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
			return errors.Errorf("node index %d out of range", nodeIdx)
		}
		node := doc.Nodes[nodeIdx]
		world := mat4Mul(parent, nodeMatrix(node))
		if node.Mesh != nil {
			meshIdx := *node.Mesh
			if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
				return errors.Errorf("mesh index %d out of range", meshIdx)
			}
			instantiated[meshIdx] = true
			if err := appendGLTFMesh(doc, doc.Meshes[meshIdx], world, res); err != nil {
				return err
			}
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, scene := range doc.Scenes {
		for _, root := range scene.Nodes {
			if err := walk(root, mat4Identity()); err != nil {
				return nil, err
			}
		}
	}
	for i, m := range doc.Meshes {
		if !instantiated[i] {
			if err := appendGLTFMesh(doc, m, mat4Identity(), res); err != nil {
				return nil, err
			}
		}
	}
	if len(res.TriangleSlice()) == 0 {
		return nil, errors.Errorf("%s contains no triangles", path)
	}
	return res, nil
}

// LoadMeshFile loads a target mesh from a .glb/.gltf scene or an .stl
// file.
func LoadMeshFile(path string) (*model3d.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return LoadGLB(path)
	case ".stl":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		tris, err := model3d.ReadSTL(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		return model3d.NewMeshTriangles(tris), nil
	default:
		return nil, errors.Errorf("unsupported mesh file extension: %s", filepath.Ext(path))
	}
}

func appendGLTFMesh(doc *gltf.Document, m *gltf.Mesh, world [16]float64,
	out *model3d.Mesh) error {
	for _, prim := range m.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return errors.Wrap(err, "read positions")
		}
		verts := make([]model3d.Coord3D, len(positions))
		for i, p := range positions {
			verts[i] = mat4Apply(world, model3d.XYZ(
				float64(p[0]), float64(p[1]), float64(p[2])))
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return errors.Wrap(err, "read indices")
			}
		} else {
			indices = make([]uint32, len(verts))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		if len(indices)%3 != 0 {
			return errors.Errorf("index count %d is not a multiple of 3", len(indices))
		}
		for i := 0; i < len(indices); i += 3 {
			for _, idx := range indices[i : i+3] {
				if int(idx) >= len(verts) {
					return errors.Errorf("vertex index %d out of range", idx)
				}
			}
			out.Add(&model3d.Triangle{
				verts[indices[i]], verts[indices[i+1]], verts[indices[i+2]],
			})
		}
	}
	return nil
}

// Column-major 4x4 matrices, matching the glTF convention.

func mat4Identity() [16]float64 {
	return [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func mat4Mul(a, b [16]float64) [16]float64 {
	var out [16]float64
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

func mat4Apply(m [16]float64, p model3d.Coord3D) model3d.Coord3D {
	return model3d.XYZ(
		m[0]*p.X+m[4]*p.Y+m[8]*p.Z+m[12],
		m[1]*p.X+m[5]*p.Y+m[9]*p.Z+m[13],
		m[2]*p.X+m[6]*p.Y+m[10]*p.Z+m[14],
	)
}

// nodeMatrix returns the node's local transform: the explicit matrix when
// one is set, otherwise the composed translation/rotation/scale.
func nodeMatrix(n *gltf.Node) [16]float64 {
	if m := n.MatrixOrDefault(); m != mat4Identity() {
		return m
	}
	t := n.TranslationOrDefault()
	q := n.RotationOrDefault() // quaternion, [x, y, z, w]
	s := n.ScaleOrDefault()

	x, y, z, w := q[0], q[1], q[2], q[3]
	rot := [16]float64{
		1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w), 0,
		2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w), 0,
		2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
	scale := mat4Identity()
	scale[0], scale[5], scale[10] = s[0], s[1], s[2]
	out := mat4Mul(rot, scale)
	out[12], out[13], out[14] = t[0], t[1], t[2]
	return out
}
