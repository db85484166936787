package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelTitleHeight   = 30
	sectionHeight      = 25
	labelToWidgetSpace = 15
)

// Panel stacks widgets in titled sections and scrolls with the mouse wheel.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []section
}

type section struct {
	title   string
	widgets []Widget
	labels  []string
}

// NewPanel creates an empty panel.
func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new titled group; later widgets land in it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, section{title: title})
}

func (p *Panel) add(label string, w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	s := &p.sections[len(p.sections)-1]
	s.widgets = append(s.widgets, w)
	s.labels = append(s.labels, label)
}

// AddSlider appends a slider to the current section.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	p.add(label, s)
	return s
}

// AddCheckbox appends a checkbox to the current section.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.add(label, c)
	return c
}

// AddButton appends a full-width button to the current section.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 22, label, onClick)
	p.add("", b)
	return b
}

// layout places every widget for the current scroll offset and calls fn
// with the y of each section header (widget == nil) or widget label.
func (p *Panel) layout(fn func(y float64, title string, w Widget)) {
	y := p.Y + panelTitleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if s.title != "" {
			fn(y, s.title, nil)
			y += sectionHeight
		}
		for i, w := range s.widgets {
			w.SetY(y + labelToWidgetSpace)
			fn(y, s.labels[i], w)
			y += w.Height()
		}
	}
}

func (p *Panel) contentHeight() float64 {
	h := float64(panelTitleHeight)
	for _, s := range p.sections {
		if s.title != "" {
			h += sectionHeight
		}
		for _, w := range s.widgets {
			h += w.Height()
		}
	}
	return h
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y && y <= p.Y+p.Height-sectionHeight
}

func (p *Panel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		maxScroll := max(p.contentHeight()-p.Height+40, 0)
		p.ScrollOffset = min(max(p.ScrollOffset-dy*20, 0), maxScroll)
	}
	p.layout(func(y float64, _ string, w Widget) {
		if w != nil && p.visible(y) {
			w.Update()
		}
	})
}

func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	p.layout(func(y float64, title string, w Widget) {
		if !p.visible(y) {
			return
		}
		if w == nil {
			vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, title, int(p.X+10), int(y+3))
			return
		}
		if title != "" {
			ebitenutil.DebugPrintAt(screen, title, int(p.X+10), int(y-2))
		}
		w.Draw(screen)
	})
}
