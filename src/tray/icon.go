package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 16

// iconPNG draws a dashed selection rectangle on a transparent 16x16 canvas.
func iconPNG(outline color.RGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	lo, hi := 2, iconSize-3
	for i := lo; i <= hi; i++ {
		if (i-lo)%3 == 2 {
			continue
		}
		img.Set(i, lo, outline)
		img.Set(i, hi, outline)
		img.Set(lo, i, outline)
		img.Set(hi, i, outline)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
