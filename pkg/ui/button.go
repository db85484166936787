package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button fires OnClick once per press.
type Button struct {
	Label   string
	X, Y    float64
	W, H    float64
	OnClick func()

	BGColor    color.RGBA
	HoverColor color.RGBA

	pressed bool
}

// NewButton creates a button with the default palette.
func NewButton(x, y, w, h float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		W:          w,
		H:          h,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Update() {
	if cursorIn(b.X, b.Y, b.W, b.H) && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !b.pressed && b.OnClick != nil {
			b.OnClick()
		}
		b.pressed = true
		return
	}
	b.pressed = false
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	if cursorIn(b.X, b.Y, b.W, b.H) {
		bg = b.HoverColor
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 2, borderColor, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+6), int(b.Y+(b.H-16)/2))
}

func (b *Button) Height() float64 { return b.H + 10 }

func (b *Button) SetY(y float64) { b.Y = y }
