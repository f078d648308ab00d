package components

import (
	"github.com/spaghettifunk/nucleo/engine/math"
)

// Camera holds the view and projection state for a scene. The view matrix
// is rebuilt lazily from position/target/up when requested, the projection
// is computed per call because the aspect ratio follows the framebuffer.
type Camera struct {
	position math.Vec3
	target   math.Vec3
	up       math.Vec3

	fovDegrees float32
	nearClip   float32
	farClip    float32

	isDirty    bool
	viewMatrix math.Mat4
}

func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the default vantage point: slightly above and behind the
// origin, looking at it, with a 60 degree vertical field of view.
func (c *Camera) Reset() {
	c.position = math.NewVec3(0.0, 2.0, 5.0)
	c.target = math.NewVec3Zero()
	c.up = math.NewVec3Up()
	c.fovDegrees = 60.0
	c.nearClip = 0.1
	c.farClip = 1000.0
	c.isDirty = true
	c.viewMatrix = math.NewMat4Identity()
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) Target() math.Vec3 {
	return c.target
}

// LookAt repositions the camera so it observes target from position with the
// given up direction.
func (c *Camera) LookAt(position, target, up math.Vec3) {
	c.position = position
	c.target = target
	c.up = up
	c.isDirty = true
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *Camera) SetTarget(target math.Vec3) {
	c.target = target
	c.isDirty = true
}

// SetPerspective replaces the projection parameters. The field of view is
// vertical and expressed in degrees.
func (c *Camera) SetPerspective(fovDegrees, nearClip, farClip float32) {
	c.fovDegrees = fovDegrees
	c.nearClip = nearClip
	c.farClip = farClip
}

// MoveForward dollies the camera along its view direction, keeping the
// target fixed. The camera never crosses the target.
func (c *Camera) MoveForward(amount float32) {
	direction := c.target.Sub(c.position)
	distance := direction.Length()
	if distance <= amount+c.nearClip {
		return
	}
	c.position = c.position.Add(direction.Normalized().MulScalar(amount))
	c.isDirty = true
}

// MoveBackward dollies the camera away from its target.
func (c *Camera) MoveBackward(amount float32) {
	direction := c.position.Sub(c.target)
	if direction.Length() == 0 {
		return
	}
	c.position = c.position.Add(direction.Normalized().MulScalar(amount))
	c.isDirty = true
}

// View returns the camera's view matrix, rebuilding it if the vantage
// point changed since the last call.
func (c *Camera) View() math.Mat4 {
	if c.isDirty {
		c.viewMatrix = math.NewMat4LookAt(c.position, c.target, c.up)
		c.isDirty = false
	}
	return c.viewMatrix
}

// Projection returns a right-handed perspective matrix for the given aspect
// ratio. Vulkan's clip space points Y down, so the Y scale is negated here
// rather than in every shader.
func (c *Camera) Projection(aspect float32) math.Mat4 {
	projection := math.NewMat4Perspective(math.DegToRad(c.fovDegrees), aspect, c.nearClip, c.farClip)
	projection.Data[5] *= -1
	return projection
}
