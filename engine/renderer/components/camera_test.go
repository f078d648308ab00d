package components

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nucleo/engine/math"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()

	require.Equal(t, math.NewVec3(0, 2, 5), c.Position())
	require.Equal(t, math.NewVec3Zero(), c.Target())

	want := math.NewMat4LookAt(math.NewVec3(0, 2, 5), math.NewVec3Zero(), math.NewVec3Up())
	require.Equal(t, want, c.View())
}

func TestCameraViewFollowsSetters(t *testing.T) {
	c := NewCamera()
	initial := c.View()

	c.SetPosition(math.NewVec3(10, 0, 0))
	moved := c.View()
	require.NotEqual(t, initial, moved)

	c.SetTarget(math.NewVec3(0, 5, 0))
	require.NotEqual(t, moved, c.View())

	position := math.NewVec3(1, 2, 3)
	target := math.NewVec3(4, 5, 6)
	c.LookAt(position, target, math.NewVec3Up())
	require.Equal(t, math.NewMat4LookAt(position, target, math.NewVec3Up()), c.View())
	require.Equal(t, position, c.Position())
	require.Equal(t, target, c.Target())
}

func TestCameraViewStableBetweenChanges(t *testing.T) {
	c := NewCamera()

	first := c.View()
	second := c.View()
	require.Equal(t, first, second)
}

func TestCameraProjectionFlipsY(t *testing.T) {
	c := NewCamera()

	projection := c.Projection(16.0 / 9.0)
	require.Less(t, projection.Data[5], float32(0))

	reference := math.NewMat4Perspective(math.DegToRad(60), 16.0/9.0, 0.1, 1000)
	require.Equal(t, -reference.Data[5], projection.Data[5])
	require.Equal(t, reference.Data[0], projection.Data[0])
}

func TestCameraSetPerspective(t *testing.T) {
	c := NewCamera()
	narrow := c.Projection(1.0)

	c.SetPerspective(90.0, 0.5, 50.0)
	wide := c.Projection(1.0)

	// A wider field of view scales the frustum down.
	require.Less(t, math.Abs(wide.Data[5]), math.Abs(narrow.Data[5]))
}

func TestCameraMoveForwardStopsBeforeTarget(t *testing.T) {
	c := NewCamera()
	c.LookAt(math.NewVec3(0, 0, 5), math.NewVec3Zero(), math.NewVec3Up())

	// Would overshoot the target, so nothing moves.
	c.MoveForward(10.0)
	require.Equal(t, math.NewVec3(0, 0, 5), c.Position())

	c.MoveForward(1.0)
	require.True(t, c.Position().Compare(math.NewVec3(0, 0, 4), 1e-5))

	c.MoveBackward(2.0)
	require.True(t, c.Position().Compare(math.NewVec3(0, 0, 6), 1e-5))
}

func TestCameraReset(t *testing.T) {
	c := NewCamera()
	c.LookAt(math.NewVec3(9, 9, 9), math.NewVec3(1, 1, 1), math.NewVec3(1, 0, 0))
	c.SetPerspective(120, 1, 10)

	c.Reset()
	require.Equal(t, math.NewVec3(0, 2, 5), c.Position())
	require.Equal(t, NewCamera().Projection(1.0), c.Projection(1.0))
}
