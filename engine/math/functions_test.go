package math

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const tolerance = 1e-5

func TestMat4TranslationTransformsPoint(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	got := NewVec3(0, 0, 0).Transform(m)
	require.True(t, got.Compare(NewVec3(1, 2, 3), tolerance), "got %+v", got)
}

func TestMat4MulComposesRightToLeft(t *testing.T) {
	translate := NewMat4Translation(NewVec3(5, 0, 0))
	scale := NewMat4Scale(NewVec3(2, 2, 2))

	// translate.Mul(scale) scales first, then translates.
	got := NewVec3(1, 1, 1).Transform(translate.Mul(scale))
	require.True(t, got.Compare(NewVec3(7, 2, 2), tolerance), "got %+v", got)

	// The other order translates first.
	got = NewVec3(1, 1, 1).Transform(scale.Mul(translate))
	require.True(t, got.Compare(NewVec3(12, 2, 2), tolerance), "got %+v", got)
}

func TestMat4EulerZRotatesQuarterTurn(t *testing.T) {
	m := NewMat4EulerZ(DegToRad(90))
	got := NewVec3(1, 0, 0).Transform(m)
	require.True(t, got.Compare(NewVec3(0, 1, 0), tolerance), "got %+v", got)
}

func TestMat4LookAtCentersTarget(t *testing.T) {
	// The original boot camera: eye (0,2,5) looking at origin.
	view := NewMat4LookAt(NewVec3(0, 2, 5), NewVec3Zero(), NewVec3Up())

	// The target lands on the -Z view axis, centered in X/Y.
	got := NewVec3Zero().Transform(view)
	require.InDelta(t, 0, float64(got.X), tolerance)
	require.InDelta(t, 0, float64(got.Y), tolerance)
	require.Less(t, got.Z, float32(0))

	// The eye maps to the view-space origin.
	eye := NewVec3(0, 2, 5).Transform(view)
	require.True(t, eye.Compare(NewVec3Zero(), tolerance), "got %+v", eye)
}

func TestMat4PerspectiveShape(t *testing.T) {
	p := NewMat4Perspective(DegToRad(60), 16.0/9.0, 0.1, 1000)
	require.InDelta(t, -1.0, float64(p.Data[11]), tolerance)
	require.Equal(t, float32(0), p.Data[15])
	require.Greater(t, p.Data[5], float32(0), "Y flip is the camera's job, not the projection's")
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalized()
	require.InDelta(t, 1.0, float64(v.Length()), tolerance)
	require.True(t, NewVec3Zero().Normalized().Compare(NewVec3Zero(), tolerance))
}

func TestVec3Cross(t *testing.T) {
	got := NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0))
	require.True(t, got.Compare(NewVec3(0, 0, 1), tolerance), "got %+v", got)
}
