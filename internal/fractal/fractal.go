// Package fractal generates jagged branching lightning arcs between two
// points by recursive midpoint displacement.
package fractal

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/geometry"
)

const (
	// MinSegment is the length in pixels below which a segment is drawn
	// straight.
	MinSegment = 10.0

	// BranchChance is the probability of a side branch at each midpoint.
	BranchChance = 0.2

	// MaxDepth bounds the recursion regardless of input.
	MaxDepth = 12
)

// Segment is one straight piece of an arc.
type Segment struct {
	From      geometry.Point
	To        geometry.Point
	Thickness int
}

// Generate returns the straight segments of an arc from start to end.
// noise is the maximum midpoint displacement in pixels at the top level;
// it halves at every level. Non-finite input yields no segments.
func Generate(start, end geometry.Point, thickness int, noise float64, rng *rand.Rand) []Segment {
	if !finite(start.X, start.Y, end.X, end.Y, noise) {
		return nil
	}
	if thickness < 1 {
		thickness = 1
	}

	var segments []Segment
	generate(&segments, start, end, thickness, math.Abs(noise), rng, 0)
	return segments
}

func generate(out *[]Segment, start, end geometry.Point, thickness int, noise float64, rng *rand.Rand, depth int) {
	if depth >= MaxDepth || geometry.Distance(start, end) < MinSegment {
		*out = append(*out, Segment{From: start, To: end, Thickness: thickness})
		return
	}

	mid := geometry.Midpoint(start, end)
	mid.X += uniform(rng, noise)
	mid.Y += uniform(rng, noise)

	generate(out, start, mid, thickness, noise/2, rng, depth+1)
	generate(out, mid, end, thickness, noise/2, rng, depth+1)

	if rng.Float64() < BranchChance {
		branch := geometry.Point{
			X: mid.X + uniform(rng, 2*noise),
			Y: mid.Y + uniform(rng, 2*noise),
		}
		generate(out, mid, branch, max(thickness-1, 1), noise/2, rng, depth+1)
	}
}

// Draw renders an arc from start to end onto layer.
func Draw(layer *gocv.Mat, start, end geometry.Point, c color.RGBA, thickness int, noise float64, rng *rand.Rand) {
	for _, s := range Generate(start, end, thickness, noise, rng) {
		gocv.Line(layer, toImage(s.From), toImage(s.To), c, s.Thickness)
	}
}

// uniform returns a sample from [-n, n].
func uniform(rng *rand.Rand, n float64) float64 {
	if n == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * n
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func toImage(p geometry.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}
