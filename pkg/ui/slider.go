package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider picks a value in [Min, Max] by dragging. A positive Step snaps it.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	X, Y     float64
	W, H     float64
}

// NewSlider creates a slider of height 14 with the value clamped into range.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{Label: label, Min: min, Max: max, X: x, Y: y, W: w, H: 14}
	s.Value = s.clamp(value)
	return s
}

// Int returns the value rounded to the nearest integer.
func (s *Slider) Int() int {
	return int(math.Round(s.Value))
}

func (s *Slider) clamp(v float64) float64 {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Min(math.Max(v, s.Min), s.Max)
}

func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || !cursorIn(s.X, s.Y, s.W, s.H) {
		return
	}
	mx, _ := ebiten.CursorPosition()
	ratio := (float64(mx) - s.X) / s.W
	s.Value = s.clamp(s.Min + ratio*(s.Max-s.Min))
}

func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), trackColor, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), fillColor, true)
}

// Height includes the label line above the track.
func (s *Slider) Height() float64 { return s.H + 25 }

func (s *Slider) SetY(y float64) { s.Y = y }
