package viewer

import (
	gomath "math"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/mesh"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera sized for a tree a few units tall.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Center:          math.Vec3{Y: 4},
		Distance:        14,
		RotationX:       0.25,
		MinDistance:     1,
		MaxDistance:     200,
		MinPitch:        -1.2,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	pitch, yaw := float64(c.RotationX), float64(c.RotationY)
	return c.Center.Add(math.Vec3{
		X: c.Distance * float32(gomath.Cos(pitch)*gomath.Sin(yaw)),
		Y: c.Distance * float32(gomath.Sin(pitch)),
		Z: c.Distance * float32(gomath.Cos(pitch)*gomath.Cos(yaw)),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Up)
}

// HandleDrag updates rotation from a mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = min(max(c.RotationX, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance from a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// FitToBounds centers the camera on b and backs off far enough to see all of it.
// Yaw is kept so regenerating does not spin the view.
func (c *OrbitCamera) FitToBounds(b mesh.Bounds) {
	c.Center = math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
	size := max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1], b.Max[2]-b.Min[2])
	c.Distance = min(max(size*1.4, c.MinDistance), c.MaxDistance)
	c.RotationX = 0.25
}
