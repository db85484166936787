package simulation

import (
	"cmp"
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-cyano-simulation/pkg/geometry"
	"gonum.org/v1/gonum/stat"
)

// GlobalOrder returns the signed mean of cos 2θ over views, in [−1, 1]. It is
// 1 when every filament lies along x, −1 along y, and 0 for an empty
// population. It ignores spatial structure; prefer BlockOrder for measurements.
func GlobalOrder(views []FilamentView) float64 {
	thetas := make([]float64, len(views))
	for i, v := range views {
		thetas[i] = v.Theta
	}
	return globalOrder(thetas)
}

// BlockOrder tiles [0, domainSize]² into blocks of edge l, computes the
// nematic order of every block holding more than one head and returns their
// mean. Heads on the far edge count in the last block. Without any such
// block, or for a non-positive l, the result is 0.
func BlockOrder(views []FilamentView, domainSize, l float64) float64 {
	heads := make([]geometry.Vector2D, len(views))
	thetas := make([]float64, len(views))
	for i, v := range views {
		if len(v.Points) > 0 {
			heads[i] = v.Points[0]
		}
		thetas[i] = v.Theta
	}
	return blockOrder(heads, thetas, domainSize, l)
}

func globalOrder(thetas []float64) float64 {
	if len(thetas) == 0 {
		return 0
	}
	cos := make([]float64, len(thetas))
	for i, t := range thetas {
		cos[i] = math.Cos(2 * t)
	}
	return math.Min(math.Max(stat.Mean(cos, nil), -1), 1)
}

type blockAcc struct {
	cos, sin []float64
}

func blockOrder(heads []geometry.Vector2D, thetas []float64, domainSize, l float64) float64 {
	if l <= 0 || domainSize <= 0 || len(heads) == 0 {
		return 0
	}
	last := int(math.Ceil(domainSize/l)) - 1
	cell := func(v float64) int {
		return min(max(int(math.Floor(v/l)), 0), last)
	}

	blocks := make(map[gridKey]*blockAcc)
	for i, h := range heads {
		key := gridKey{x: cell(h.X), y: cell(h.Y)}
		acc, ok := blocks[key]
		if !ok {
			acc = &blockAcc{}
			blocks[key] = acc
		}
		acc.cos = append(acc.cos, math.Cos(2*thetas[i]))
		acc.sin = append(acc.sin, math.Sin(2*thetas[i]))
	}

	// Sorted keys make the floating point sum reproducible.
	keys := make([]gridKey, 0, len(blocks))
	for k, acc := range blocks {
		if len(acc.cos) > 1 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0
	}
	slices.SortFunc(keys, func(a, b gridKey) int {
		return cmp.Or(cmp.Compare(a.x, b.x), cmp.Compare(a.y, b.y))
	})

	orders := make([]float64, len(keys))
	for i, k := range keys {
		acc := blocks[k]
		orders[i] = clampUnit(math.Hypot(stat.Mean(acc.cos, nil), stat.Mean(acc.sin, nil)))
	}
	return stat.Mean(orders, nil)
}

// clampUnit absorbs rounding that would push a modulus just past 1.
func clampUnit(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
