package osinput

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectFromBounds(t *testing.T) {
	r := rectFromBounds(image.Rect(100, 0, 200, 100))
	assert.Equal(t, int32(100), r.X)
	assert.Equal(t, int32(0), r.Y)
	assert.Equal(t, int32(100), r.Width)
	assert.Equal(t, int32(100), r.Height)
}
