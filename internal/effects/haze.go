package effects

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Heat-haze wave parameters.
const (
	hazeWaveLength = 0.1
	hazeSpeed      = 0.3
)

// hazeField returns the remap coordinates for a w x h region whose haze
// circle is centred at (cx, cy) in region coordinates. Pixels outside the
// circle map onto themselves; inside, the displacement fades from
// strength at the centre to zero at the rim.
func hazeField(w, h int, cx, cy, radius, strength float64, tick int) (xs, ys []float32) {
	xs = make([]float32, w*h)
	ys = make([]float32, w*h)
	t := float64(tick) * hazeSpeed

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			fx, fy := float64(x), float64(y)
			dx, dy := fx-cx, fy-cy

			dist := math.Hypot(dx, dy)
			if radius > 0 && dist < radius {
				falloff := 1 - dist/radius
				fx += math.Sin(dy*hazeWaveLength+t) * strength * falloff
				fy += math.Cos(dx*hazeWaveLength+t) * strength * falloff
			}

			xs[i] = float32(fx)
			ys[i] = float32(fy)
		}
	}
	return xs, ys
}

// clipRect returns r clipped to a frame of the given size.
func clipRect(r image.Rectangle, cols, rows int) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, cols, rows))
}

// ApplyHaze distorts a circular region of frame around center with a
// moving sine/cosine wave. A region outside the frame is skipped.
func ApplyHaze(frame *gocv.Mat, center image.Point, radius int, strength float64, tick int) {
	if frame.Empty() || radius <= 0 || strength == 0 {
		return
	}

	rect := clipRect(image.Rect(center.X-radius, center.Y-radius, center.X+radius, center.Y+radius), frame.Cols(), frame.Rows())
	if rect.Empty() {
		return
	}
	w, h := rect.Dx(), rect.Dy()

	xs, ys := hazeField(w, h, float64(center.X-rect.Min.X), float64(center.Y-rect.Min.Y), float64(radius), strength, tick)

	mapX := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32FC1)
	defer mapX.Close()
	mapY := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32FC1)
	defer mapY.Close()

	px, err := mapX.DataPtrFloat32()
	if err != nil {
		return
	}
	py, err := mapY.DataPtrFloat32()
	if err != nil {
		return
	}
	copy(px, xs)
	copy(py, ys)

	roi := frame.Region(rect)
	defer roi.Close()

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.Remap(roi, &warped, &mapX, &mapY, gocv.InterpolationLinear, gocv.BorderReplicate, color.RGBA{})
	warped.CopyTo(&roi)
}
