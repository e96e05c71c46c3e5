package effects

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"gocv.io/x/gocv"
)

// minShake is the intensity below which shake stops.
const minShake = 0.5

// Shake is the screen-shake state: an intensity that decays every tick and
// a random offset drawn from it.
type Shake struct {
	intensity float64
	decay     float64
	rng       *rand.Rand
}

// NewShake creates a resting shake.
func NewShake(decay float64, rng *rand.Rand) *Shake {
	return &Shake{decay: decay, rng: rng}
}

// Set raises the intensity to at least v.
func (s *Shake) Set(v float64) {
	s.intensity = math.Max(s.intensity, v)
}

// Intensity returns the current intensity in pixels.
func (s *Shake) Intensity() float64 {
	return s.intensity
}

// SetDecay changes the per-tick decay factor.
func (s *Shake) SetDecay(decay float64) {
	s.decay = decay
}

// Next returns this tick's offset and decays the intensity.
func (s *Shake) Next() image.Point {
	if s.intensity < minShake {
		s.intensity = 0
		return image.Point{}
	}

	n := int(s.intensity)
	offset := image.Pt(s.rng.Intn(2*n+1)-n, s.rng.Intn(2*n+1)-n)

	s.intensity *= s.decay
	if s.intensity < minShake {
		s.intensity = 0
	}
	return offset
}

// Apply translates the whole frame by this tick's offset. Uncovered edges
// are filled by reflection.
func (s *Shake) Apply(frame *gocv.Mat) image.Point {
	offset := s.Next()
	if offset == (image.Point{}) || frame.Empty() {
		return offset
	}

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer m.Close()
	m.SetDoubleAt(0, 0, 1)
	m.SetDoubleAt(0, 1, 0)
	m.SetDoubleAt(0, 2, float64(offset.X))
	m.SetDoubleAt(1, 0, 0)
	m.SetDoubleAt(1, 1, 1)
	m.SetDoubleAt(1, 2, float64(offset.Y))

	shifted := gocv.NewMat()
	defer shifted.Close()
	gocv.WarpAffineWithParams(*frame, &shifted, m, image.Pt(frame.Cols(), frame.Rows()), gocv.InterpolationLinear, gocv.BorderReflect, color.RGBA{})
	shifted.CopyTo(frame)
	return offset
}
