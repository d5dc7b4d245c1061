package viewer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/species"
	"github.com/Faultbox/arbor/pkg/tree"
)

const (
	fovY      = 0.8 // radians
	nearPlane = 0.05
	farPlane  = 500
)

var wireColor = species.Color{0.95, 0.85, 0.2}

// Renderer draws one generated tree.
type Renderer struct {
	width, height int
	log           *zap.Logger

	program    uint32
	uViewProj  int32
	uColor     int32
	uLightDir  int32
	uLit       int32
	background species.Color

	branches gpuMesh
	leaves   gpuMesh
	lines    gpuMesh

	trunkColor species.Color
	leafColor  species.Color
}

// NewRenderer sets up GL state and the tree shader.
// Must be called after the OpenGL context is created.
func NewRenderer(width, height int, multisample bool, background species.Color, log *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		width:      width,
		height:     height,
		log:        log,
		background: background,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	if multisample {
		gl.Enable(gl.MULTISAMPLE)
	}
	gl.ClearColor(background[0], background[1], background[2], 1.0)

	var err error
	r.program, err = compileProgram(treeVertexShader, treeFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.uViewProj = mustUniform(r.program, "uViewProj")
	r.uColor = mustUniform(r.program, "uColor")
	r.uLightDir = mustUniform(r.program, "uLightDir")
	r.uLit = mustUniform(r.program, "uLit")

	r.Resize(width, height)
	return r, nil
}

// SetTree replaces the uploaded meshes with res.
func (r *Renderer) SetTree(res *tree.Result) {
	r.branches.release()
	r.leaves.release()
	r.lines.release()

	r.branches = uploadBuffers(&res.Branches)
	r.leaves = uploadBuffers(&res.Leaves)
	r.lines = uploadLines(res.Lines)
	r.trunkColor = res.Profile.TrunkColor
	r.leafColor = res.Profile.LeafColor

	r.log.Debug("tree uploaded",
		zap.Int("branchTriangles", res.Branches.TriangleCount()),
		zap.Int("leafTriangles", res.Leaves.TriangleCount()),
		zap.Int("lineVertices", len(res.Lines)/3),
	)
}

// Resize handles a window resize.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, max(height, 1)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw renders the current tree from cam. The skeleton wireframe is drawn
// over the mesh when wireframe is set.
func (r *Renderer) Draw(cam *OrbitCamera, wireframe bool) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	proj := math.Perspective(fovY, float32(r.width)/float32(r.height), nearPlane, farPlane)
	viewProj := proj.Mul(cam.ViewMatrix())
	light := math.Vec3{X: 0.4, Y: 0.8, Z: 0.45}.Normalize()

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uViewProj, 1, false, viewProj.Ptr())
	gl.Uniform3f(r.uLightDir, light.X, light.Y, light.Z)

	gl.Uniform1f(r.uLit, 1)
	r.drawMesh(&r.branches, r.trunkColor, gl.TRIANGLES)
	r.drawMesh(&r.leaves, r.leafColor, gl.TRIANGLES)

	if wireframe {
		gl.Disable(gl.DEPTH_TEST)
		gl.Uniform1f(r.uLit, 0)
		r.drawMesh(&r.lines, wireColor, gl.LINES)
		gl.Enable(gl.DEPTH_TEST)
	}
}

func (r *Renderer) drawMesh(m *gpuMesh, c species.Color, mode uint32) {
	gl.Uniform3f(r.uColor, c[0], c[1], c[2])
	m.draw(mode)
}

// Close releases GL resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.branches.release()
	r.leaves.release()
	r.lines.release()
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}
