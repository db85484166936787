package viewer

import (
	"math"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
)

const viewMargin = 10

// viewport maps the square simulation domain onto the drawing area, y up.
type viewport struct {
	domain  float64
	block   float64
	scale   float64
	offsetX float64
	offsetY float64
}

func newViewport(domain, block float64, width, height int) viewport {
	side := math.Min(float64(width), float64(height)) - 2*viewMargin
	return viewport{
		domain:  domain,
		block:   block,
		scale:   side / domain,
		offsetX: (float64(width) - side) / 2,
		offsetY: (float64(height) - side) / 2,
	}
}

func (v viewport) toScreen(p geometry.Vector2D) (float32, float32) {
	x := v.offsetX + p.X*v.scale
	y := v.offsetY + (v.domain-p.Y)*v.scale
	return float32(x), float32(y)
}

// bounds returns the top-left corner and side of the domain on screen.
func (v viewport) bounds() (x, y, side float32) {
	return float32(v.offsetX), float32(v.offsetY), float32(v.domain * v.scale)
}

// gridLines returns the block boundaries as x0, y0, x1, y1 segments.
func (v viewport) gridLines() [][4]float32 {
	if v.block <= 0 {
		return nil
	}
	var lines [][4]float32
	for c := v.block; c < v.domain; c += v.block {
		ax, ay := v.toScreen(geometry.Vector2D{X: c, Y: 0})
		bx, by := v.toScreen(geometry.Vector2D{X: c, Y: v.domain})
		lines = append(lines, [4]float32{ax, ay, bx, by})

		ax, ay = v.toScreen(geometry.Vector2D{X: 0, Y: c})
		bx, by = v.toScreen(geometry.Vector2D{X: v.domain, Y: c})
		lines = append(lines, [4]float32{ax, ay, bx, by})
	}
	return lines
}
