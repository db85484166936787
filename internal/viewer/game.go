// Package viewer renders simulation frames in an ebiten window.
package viewer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/ui"
)

const (
	ScreenWidth  = 1000
	ScreenHeight = 720
	panelWidth   = 260

	// a request is retried when its frame was dropped
	requestTimeout = 500 * time.Millisecond
)

var (
	backgroundColor = color.RGBA{R: 12, G: 16, B: 22, A: 255}
	domainColor     = color.RGBA{R: 70, G: 80, B: 90, A: 255}
	gridColor       = color.RGBA{R: 40, G: 48, B: 56, A: 255}
	freeColor       = color.RGBA{R: 60, G: 200, B: 140, A: 255}
	stuckColor      = color.RGBA{R: 240, G: 150, B: 50, A: 255}
	headColor       = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

// Advancer asks the simulation for more steps. It must not block.
type Advancer func(steps int)

// Game is the ebiten.Game showing the latest Frame. It only reads frames;
// every change to the population goes through the Advancer.
type Game struct {
	frames  <-chan *simulation.Frame
	advance Advancer
	view    viewport

	frame       *simulation.Frame
	pending     bool
	requestedAt time.Time

	panel         *ui.Panel
	stepsPerFrame *ui.Slider
	showHeads     *ui.Checkbox
	showGrid      *ui.Checkbox
	paused        *ui.Checkbox
}

// NewGame builds a viewer for a domain of the given size.
func NewGame(frames <-chan *simulation.Frame, advance Advancer, domainSize, blockSize float64) *Game {
	g := &Game{
		frames:  frames,
		advance: advance,
		view:    newViewport(domainSize, blockSize, ScreenWidth-panelWidth, ScreenHeight),
	}

	g.panel = ui.NewPanel("Cyanobacteria", ScreenWidth-panelWidth, 0, panelWidth, ScreenHeight)
	g.panel.AddSection("Playback")
	g.stepsPerFrame = g.panel.AddSlider("Steps per frame", 1, 50, 1)
	g.stepsPerFrame.Step = 1
	g.paused = g.panel.AddCheckbox("Pause", false)
	g.panel.AddButton("Single step", func() {
		if g.paused.Value {
			g.request(1)
		}
	})
	g.panel.AddSection("Display")
	g.showHeads = g.panel.AddCheckbox("Show heads", true)
	g.showGrid = g.panel.AddCheckbox("Show block grid", false)
	return g
}

func (g *Game) request(steps int) {
	if g.pending && time.Since(g.requestedAt) < requestTimeout {
		return
	}
	g.pending = true
	g.requestedAt = time.Now()
	g.advance(steps)
}

func (g *Game) Update() error {
	g.panel.Update()

	// keep only the newest frame
Loop:
	for {
		select {
		case f := <-g.frames:
			g.frame = f
			g.pending = false
		default:
			break Loop
		}
	}

	if !g.paused.Value {
		g.request(g.stepsPerFrame.Int())
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if g.showGrid.Value {
		for _, l := range g.view.gridLines() {
			vector.StrokeLine(screen, l[0], l[1], l[2], l[3], 1, gridColor, false)
		}
	}
	x0, y0, side := g.view.bounds()
	vector.StrokeRect(screen, x0, y0, side, side, 1, domainColor, false)

	if g.frame != nil {
		g.drawFilaments(screen)
	}
	g.panel.Draw(screen)
	ebitenutil.DebugPrintAt(screen, g.hud(), 10, 10)
}

func (g *Game) drawFilaments(screen *ebiten.Image) {
	for _, f := range g.frame.Filaments {
		col := filamentColor(f)
		for i := 1; i < len(f.Points); i++ {
			ax, ay := g.view.toScreen(f.Points[i-1])
			bx, by := g.view.toScreen(f.Points[i])
			vector.StrokeLine(screen, ax, ay, bx, by, 2, col, true)
		}
		if g.showHeads.Value && len(f.Points) > 0 {
			hx, hy := g.view.toScreen(f.Points[0])
			vector.FillCircle(screen, hx, hy, 2.5, headColor, true)
		}
	}
}

func (g *Game) hud() string {
	if g.frame == nil {
		return fmt.Sprintf("waiting for the first frame\nFPS %.0f", ebiten.ActualFPS())
	}
	return fmt.Sprintf("step %d\nS global %.3f\nS block  %.3f\nbonds %d\nFPS %.0f TPS %.0f",
		g.frame.Step, g.frame.GlobalOrder, g.frame.BlockOrder, g.frame.Bonds,
		ebiten.ActualFPS(), ebiten.ActualTPS())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

func filamentColor(f simulation.FilamentView) color.RGBA {
	if f.Stuck {
		return stuckColor
	}
	return freeColor
}
