package effects

import (
	"image"
	"math/rand"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/fractal"
	"github.com/ayusman/saiyan/internal/geometry"
)

// pairAttempts bounds the random sampling per requested bolt.
const pairAttempts = 8

// lightningNoise is the top-level arc displacement for body lightning.
const lightningNoise = 20.0

// binaryMask converts a silhouette mask to a single-channel 8-bit binary
// image. Float masks are treated as probabilities and cut at 0.5; any
// non-zero pixel of an 8-bit mask is foreground, so both 0/1 and 0/255
// masks work.
func binaryMask(mask gocv.Mat) gocv.Mat {
	src := mask
	gray := gocv.NewMat()
	defer gray.Close()
	if mask.Channels() == 3 {
		gocv.CvtColor(mask, &gray, gocv.ColorBGRToGray)
		src = gray
	}

	bin := gocv.NewMat()
	switch src.Type() {
	case gocv.MatTypeCV32FC1, gocv.MatTypeCV64FC1:
		cut := gocv.NewMat()
		defer cut.Close()
		gocv.Threshold(src, &cut, 0.5, 255, gocv.ThresholdBinary)
		cut.ConvertTo(&bin, gocv.MatTypeCV8UC1)
	default:
		gocv.Threshold(src, &bin, 0, 255, gocv.ThresholdBinary)
	}
	return bin
}

// maskBoundary returns the outer boundary pixels of the binary mask.
func maskBoundary(bin gocv.Mat) []image.Point {
	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	var points []image.Point
	for i := 0; i < contours.Size(); i++ {
		points = append(points, contours.At(i).ToPoints()...)
	}
	return points
}

// pickPairs samples up to n distinct point pairs no further apart than
// maxDist.
func pickPairs(points []image.Point, n int, maxDist float64, rng *rand.Rand) [][2]geometry.Point {
	if len(points) < 2 || n <= 0 {
		return nil
	}

	var pairs [][2]geometry.Point
	for attempt := 0; attempt < n*pairAttempts && len(pairs) < n; attempt++ {
		a := toPoint(points[rng.Intn(len(points))])
		b := toPoint(points[rng.Intn(len(points))])
		d := geometry.Distance(a, b)
		if d == 0 || d > maxDist {
			continue
		}
		pairs = append(pairs, [2]geometry.Point{a, b})
	}
	return pairs
}

// DrawBodyLightning draws arcs between nearby points of the silhouette
// boundary and merges them additively onto frame. A mask that does not
// match the frame size is ignored.
func (c *Compositor) DrawBodyLightning(frame *gocv.Mat, mask gocv.Mat) int {
	if frame.Empty() || mask.Empty() {
		return 0
	}
	if mask.Rows() != frame.Rows() || mask.Cols() != frame.Cols() {
		return 0
	}

	bin := binaryMask(mask)
	defer bin.Close()

	pairs := pickPairs(maskBoundary(bin), c.config.LightningBolts, c.config.LightningProximity, c.rng)
	if len(pairs) == 0 {
		return 0
	}

	layer := newLayer(*frame)
	defer layer.Close()
	for _, p := range pairs {
		fractal.Draw(&layer, p[0], p[1], ColorLightning, 1, lightningNoise, c.rng)
	}

	glow := gocv.NewMat()
	defer glow.Close()
	gocv.GaussianBlur(layer, &glow, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
	gocv.Add(layer, glow, &layer)

	gocv.Add(*frame, layer, frame)
	return len(pairs)
}

func toPoint(p image.Point) geometry.Point {
	return geometry.Point{X: float64(p.X), Y: float64(p.Y)}
}
