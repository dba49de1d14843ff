package tray

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconPNG(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	data := iconPNG(red)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, iconSize, img.Bounds().Dx())

	r, _, _, a := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
	_, _, _, a = img.At(8, 8).RGBA()
	assert.Zero(t, a, "interior stays transparent")
}

func TestTooltip(t *testing.T) {
	assert.Equal(t, "Region Select", tooltipFor(""))
	assert.Equal(t, "Region Select (last: 10,10,90,40)", tooltipFor("10,10,90,40"))
}

func TestSetLastSelectionBeforeReady(t *testing.T) {
	tr := New(Callbacks{}, color.RGBA{A: 255})
	tr.SetLastSelection("1,2,3,4")
	assert.Equal(t, "1,2,3,4", tr.lastText)
}
