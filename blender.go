package textemboss

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// DefaultCombineTimeout bounds a Blender invocation when the caller does
// not configure one; an unresponsive subprocess would otherwise stall the
// pipeline indefinitely.
const DefaultCombineTimeout = 5 * time.Minute

// blenderBoolScript is executed by a headless Blender process. It imports
// the two GLB operands, applies an exact boolean modifier, and exports the
// result as GLB. Arguments after "--" are: base, tool, output, operation.
const blenderBoolScript = `
import bpy
import sys


def enable_gltf_addon():
    try:
        bpy.ops.preferences.addon_enable(module="io_scene_gltf2")
    except Exception:
        pass


def import_glb(path):
    enable_gltf_addon()
    bpy.ops.import_scene.gltf(filepath=path)
    meshes = [o for o in bpy.context.selected_objects if o.type == 'MESH']
    if not meshes:
        meshes = [o for o in bpy.context.scene.objects if o.type == 'MESH']
    if not meshes:
        raise RuntimeError("no mesh objects imported from " + path)
    bpy.ops.object.select_all(action='DESELECT')
    for o in meshes:
        o.select_set(True)
    bpy.context.view_layer.objects.active = meshes[0]
    if len(meshes) > 1:
        bpy.ops.object.join()
    return bpy.context.view_layer.objects.active


def make_active(obj):
    bpy.ops.object.select_all(action='DESELECT')
    obj.select_set(True)
    bpy.context.view_layer.objects.active = obj


def prepare(obj):
    make_active(obj)
    bpy.ops.object.transform_apply(location=False, rotation=False, scale=True)
    bpy.ops.object.mode_set(mode='EDIT')
    bpy.ops.mesh.select_all(action='SELECT')
    bpy.ops.mesh.normals_make_consistent(inside=False)
    bpy.ops.object.mode_set(mode='OBJECT')


def main():
    argv = sys.argv
    if "--" not in argv:
        raise SystemExit("missing -- args: base.glb tool.glb out.glb OP")
    base_path, tool_path, out_path, op = argv[argv.index("--") + 1:][:4]

    bpy.ops.wm.read_factory_settings(use_empty=True)
    base = import_glb(base_path)
    tool = import_glb(tool_path)
    prepare(base)
    prepare(tool)

    make_active(base)
    mod = base.modifiers.new(name="Boolean", type='BOOLEAN')
    mod.operation = op
    try:
        mod.solver = 'EXACT'
    except Exception:
        pass
    mod.object = tool
    bpy.ops.object.modifier_apply(modifier=mod.name)

    bpy.data.objects.remove(tool, do_unlink=True)

    enable_gltf_addon()
    make_active(base)
    bpy.ops.export_scene.gltf(filepath=out_path, export_format='GLB', use_selection=True)


main()
`

// BlenderEngine combines meshes by invoking a headless Blender process.
// Operands and results travel through GLB files in a scratch directory
// scoped to a single call and removed regardless of outcome.
type BlenderEngine struct {
	// Exe is the path to the Blender executable.
	Exe string

	// Timeout bounds one invocation. Zero means DefaultCombineTimeout.
	Timeout time.Duration
}

var _ BooleanEngine = (*BlenderEngine)(nil)

// Validate checks that the configured executable exists, so a bad path
// fails before any placement work is spent on it.
func (b *BlenderEngine) Validate() error {
	if b.Exe == "" {
		return errors.New("blender executable path is not configured")
	}
	if _, err := os.Stat(b.Exe); err != nil {
		return errors.Wrap(err, "blender executable")
	}
	return nil
}

func (b *BlenderEngine) Combine(ctx context.Context, base, tool *model3d.Mesh,
	op BoolOp) (*model3d.Mesh, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "textemboss_bool_")
	if err != nil {
		return nil, errors.Wrap(err, "create scratch dir")
	}
	defer os.RemoveAll(dir)

	basePath := filepath.Join(dir, "base.glb")
	toolPath := filepath.Join(dir, "tool.glb")
	outPath := filepath.Join(dir, "out.glb")
	scriptPath := filepath.Join(dir, "bool.py")

	if err := SaveGLB(basePath, base, nil); err != nil {
		return nil, errors.Wrap(err, "export base operand")
	}
	if err := SaveGLB(toolPath, tool, nil); err != nil {
		return nil, errors.Wrap(err, "export tool operand")
	}
	if err := os.WriteFile(scriptPath, []byte(blenderBoolScript), 0o600); err != nil {
		return nil, errors.Wrap(err, "write boolean script")
	}

	timeout := b.Timeout
	if timeout == 0 {
		timeout = DefaultCombineTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.Exe,
		"--background", "--factory-startup",
		"--python", scriptPath, "--",
		basePath, toolPath, outPath, op.String())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "blender boolean %s\nstdout:\n%s\nstderr:\n%s",
			op, stdout.String(), stderr.String())
	}
	if _, err := os.Stat(outPath); err != nil {
		return nil, errors.Errorf("blender exited cleanly but wrote no output\nstdout:\n%s\nstderr:\n%s",
			stdout.String(), stderr.String())
	}

	out, err := LoadGLB(outPath)
	if err != nil {
		return nil, errors.Wrap(err, "read boolean result")
	}
	return CleanMesh(out), nil
}
