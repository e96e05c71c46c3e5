package sfx

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// BoomGenerator is the burst release: a low sine that drops in pitch under
// a burst of noise, both on an exponential decay.
type BoomGenerator struct {
	sr  beep.SampleRate
	pos int
	rng *rand.Rand
}

// NewBoomGenerator creates a boom generator. The noise is seeded so the
// same seed always renders the same waveform.
func NewBoomGenerator(sr beep.SampleRate, seed int64) *BoomGenerator {
	return &BoomGenerator{
		sr:  sr,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (g *BoomGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Fast attack then a long tail
		attack := math.Min(t/0.005, 1.0)
		envelope := attack * math.Exp(-t*4)

		freq := 40 + 80*math.Exp(-t*6)
		body := 0.6 * math.Sin(2*math.Pi*freq*t)
		noise := 0.35 * math.Exp(-t*10) * (g.rng.Float64()*2 - 1)

		sample := envelope * (body + noise) * 0.5

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BoomGenerator) Err() error {
	return nil
}

// WhooshGenerator is the swipe cue: a sine swept from low to high over the
// sound's length with a rounded envelope.
type WhooshGenerator struct {
	sr       beep.SampleRate
	pos      int
	samples  int
	from, to float64
}

// NewWhooshGenerator creates a sweep from `from` to `to` Hz lasting d.
func NewWhooshGenerator(sr beep.SampleRate, d time.Duration, from, to float64) *WhooshGenerator {
	n := sr.N(d)
	if n < 1 {
		n = 1
	}
	return &WhooshGenerator{
		sr:      sr,
		samples: n,
		from:    from,
		to:      to,
	}
}

func (g *WhooshGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		progress := float64(g.pos%g.samples) / float64(g.samples)
		t := float64(g.pos) / float64(g.sr)

		// Exponential sweep sounds even across octaves
		freq := g.from * math.Pow(g.to/g.from, progress)
		envelope := math.Sin(progress * math.Pi)
		sample := 0.25 * envelope * math.Sin(2*math.Pi*freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *WhooshGenerator) Err() error {
	return nil
}

// HumGenerator is the looping charge hum. Its loudness follows the level
// set by the caller so the hum swells as the ball grows.
type HumGenerator struct {
	sr    beep.SampleRate
	pos   int
	level atomic.Uint64 // float64 bits, written from the frame loop
}

// NewHumGenerator creates a hum at unit level.
func NewHumGenerator(sr beep.SampleRate) *HumGenerator {
	g := &HumGenerator{sr: sr}
	g.SetLevel(1)
	return g
}

// SetLevel sets the hum loudness, clamped to [0, 1].
func (g *HumGenerator) SetLevel(level float64) {
	g.level.Store(math.Float64bits(math.Max(0, math.Min(1, level))))
}

// Level returns the current loudness.
func (g *HumGenerator) Level() float64 {
	return math.Float64frombits(g.level.Load())
}

func (g *HumGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	level := g.Level()
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Two detuned partials beat against each other
		wobble := 0.5 + 0.5*math.Sin(2*math.Pi*6*t)
		sample := 0.08 * level * (math.Sin(2*math.Pi*110*t) + 0.6*wobble*math.Sin(2*math.Pi*113*t))

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *HumGenerator) Err() error {
	return nil
}
