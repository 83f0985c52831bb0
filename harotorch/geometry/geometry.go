// Package geometry computes the outline of the area protected by a torch.
package geometry

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/brentp/intintmap"
	"github.com/df-mc/dragonfly/server/block/cube"
)

// CircleSamples is the number of points sampled on a circle, one per degree.
const CircleSamples = 360

// HeightFunc returns the Y coordinate of the outline at x, z.
type HeightFunc func(x, z int) int

// FixedHeight returns a HeightFunc that always returns y.
func FixedHeight(y int) HeightFunc {
	return func(int, int) int { return y }
}

// Circle samples a circle with the radius passed around centre, one point per
// degree. The coordinates are truncated to whole blocks, so points may repeat
// for small radii. The Y coordinate of every point is taken from height.
func Circle(centre cube.Pos, radius int, height HeightFunc) []cube.Pos {
	points := make([]cube.Pos, 0, CircleSamples)
	r := float64(radius)
	for i := range CircleSamples {
		rad := float64(i) * (2 * math.Pi / CircleSamples)
		x := int(float64(centre[0]) + r*math.Cos(rad))
		z := int(float64(centre[2]) + r*math.Sin(rad))
		points = append(points, cube.Pos{x, height(x, z), z})
	}
	return points
}

// Square returns the outline of a square with sides of 2*rng around centre:
// the four points rng blocks away from centre along the X and Z axes, and for
// each of those rng points in both directions along the side it lies on. That
// is 4 + 8*rng points, all at the Y coordinate of centre.
func Square(centre cube.Pos, rng int) []cube.Pos {
	x, y, z := centre[0], centre[1], centre[2]
	axis := []cube.Pos{
		{x - rng, y, z},
		{x + rng, y, z},
		{x, y, z - rng},
		{x, y, z + rng},
	}
	points := make([]cube.Pos, 0, 4+8*rng)
	points = append(points, axis...)
	for side, p := range axis {
		for _, dir := range [2]int{1, -1} {
			for i := 1; i <= rng; i++ {
				if side < 2 {
					points = append(points, cube.Pos{p[0], y, p[2] + dir*i})
				} else {
					points = append(points, cube.Pos{p[0] + dir*i, y, p[2]})
				}
			}
		}
	}
	return points
}

// Columns returns points with every (x, z) column kept once, in the order the
// columns first appear.
func Columns(points []cube.Pos) []cube.Pos {
	seen := intintmap.New(len(points), 0.6)
	out := make([]cube.Pos, 0, len(points))
	for _, p := range points {
		key := columnKey(p)
		if _, ok := seen.Get(key); ok {
			continue
		}
		seen.Put(key, 1)
		out = append(out, p)
	}
	return out
}

func columnKey(p cube.Pos) int64 {
	return int64(int32(p[0]))<<32 | int64(uint32(int32(p[2])))
}

// RandomColour returns an opaque colour with random red, green and blue
// components.
func RandomColour() color.RGBA {
	return color.RGBA{
		R: uint8(rand.IntN(256)),
		G: uint8(rand.IntN(256)),
		B: uint8(rand.IntN(256)),
		A: 0xff,
	}
}
