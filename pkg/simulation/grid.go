package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
)

// minCellSize keeps the grid from degenerating when radii are tiny or zero.
const minCellSize = 1.0

type gridKey struct {
	x, y int
}

// SpatialIndex is a uniform hash grid over head positions, rebuilt every step.
// Entries are population indices into the slice passed to Build.
type SpatialIndex struct {
	cellSize  float64
	cells     map[gridKey][]int
	positions []geometry.Vector2D
}

// NewSpatialIndex returns an empty index. Queries are cheapest when cellSize
// is close to the largest query radius.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	return &SpatialIndex{
		cellSize: math.Max(cellSize, minCellSize),
		cells:    make(map[gridKey][]int),
	}
}

// CellSize returns the edge length of a grid cell.
func (g *SpatialIndex) CellSize() float64 {
	return g.cellSize
}

// Len returns the number of indexed positions.
func (g *SpatialIndex) Len() int {
	return len(g.positions)
}

// Build indexes positions. The slice is retained until the next Build and
// must not be mutated in between.
func (g *SpatialIndex) Build(positions []geometry.Vector2D) {
	// Reset slices to length 0 but keep their capacity, so rebuilding
	// every step allocates almost nothing once the grid has warmed up.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}

	g.positions = positions
	for i, p := range positions {
		key := g.keyOf(p.X, p.Y)
		g.cells[key] = append(g.cells[key], i)
	}
}

// QueryRadius appends to dst every index whose position lies within
// distance r of p, boundary included, and returns the extended slice.
// Order is unspecified.
func (g *SpatialIndex) QueryRadius(p geometry.Vector2D, r float64, dst []int) []int {
	if r < 0 || len(g.positions) == 0 {
		return dst
	}
	rSq := r * r
	lo := g.keyOf(p.X-r, p.Y-r)
	hi := g.keyOf(p.X+r, p.Y+r)

	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for _, idx := range g.cells[gridKey{x: x, y: y}] {
				if g.positions[idx].DistanceSquaredTo(p) <= rSq {
					dst = append(dst, idx)
				}
			}
		}
	}
	return dst
}

func (g *SpatialIndex) keyOf(x, y float64) gridKey {
	return gridKey{
		x: int(math.Floor(x / g.cellSize)),
		y: int(math.Floor(y / g.cellSize)),
	}
}
