// Package ui holds the small immediate-mode widgets drawn by the viewer.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Widget is anything a Panel can lay out.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	SetY(y float64)
}

var (
	trackColor  = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	fillColor   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	borderColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	checkColor  = color.RGBA{R: 100, G: 200, B: 100, A: 255}
)

// cursorIn reports whether the mouse cursor lies inside the rectangle.
func cursorIn(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	return float64(mx) >= x && float64(mx) <= x+w &&
		float64(my) >= y && float64(my) <= y+h
}
