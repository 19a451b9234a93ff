package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 50, Width: 100, Height: 100}
	assert.True(t, Overlap(a, b))

	c := Rect{X: 100, Y: 0, Width: 100, Height: 100}
	assert.False(t, Overlap(a, c))
}

func TestTouchRight(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 100, Y: 0, Width: 100, Height: 100}

	start, end, dir, ok := Touch(a, b)
	require.True(t, ok)
	assert.Equal(t, int32(0), start)
	assert.Equal(t, int32(100), end)
	assert.Equal(t, Right, dir)

	start2, end2, dir2, ok2 := Touch(b, a)
	require.True(t, ok2)
	assert.Equal(t, start, start2)
	assert.Equal(t, end, end2)
	assert.Equal(t, Left, dir2)
}

func TestTouchPartialOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	b := Rect{X: 100, Y: 25, Width: 100, Height: 100}

	start, end, dir, ok := Touch(a, b)
	require.True(t, ok)
	assert.Equal(t, int32(25), start)
	assert.Equal(t, int32(50), end)
	assert.Equal(t, Right, dir)
}

func TestTouchVertical(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 0, Y: 100, Width: 100, Height: 100}

	start, end, dir, ok := Touch(a, b)
	require.True(t, ok)
	assert.Equal(t, Down, dir)
	assert.Equal(t, int32(0), start)
	assert.Equal(t, int32(100), end)
}

func TestTouchNone(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 500, Y: 500, Width: 100, Height: 100}

	_, _, _, ok := Touch(a, b)
	assert.False(t, ok)
}

func TestTouchCornerOnly(t *testing.T) {
	// Share only a corner point, not a segment of positive length.
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 100, Y: 100, Width: 100, Height: 100}

	_, _, _, ok := Touch(a, b)
	assert.False(t, ok)
}

func TestReverse(t *testing.T) {
	assert.Equal(t, Right, Left.Reverse())
	assert.Equal(t, Left, Right.Reverse())
	assert.Equal(t, Down, Up.Reverse())
	assert.Equal(t, Up, Down.Reverse())
}

func TestContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 100}
	assert.True(t, r.Contains(10, 10))
	assert.True(t, r.Contains(109, 109))
	assert.False(t, r.Contains(110, 50))
	assert.False(t, r.Contains(50, 110))
	assert.False(t, r.Contains(9, 50))
}
