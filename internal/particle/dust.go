package particle

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/geometry"
)

// Dust tunables.
const (
	DustCount  = 30
	DustAlpha  = 0.3
	DustJitter = 0.8

	dustNoiseScale = 0.05
)

// DustColor is the flat colour of every mote.
var DustColor = color.RGBA{R: 200, G: 190, B: 170, A: 255}

// Mote is one ambient dust particle.
type Mote struct {
	Pos   geometry.Point
	Vel   geometry.Point
	Size  int
	Phase float64
}

// Dust is a fixed pool of motes drifting leftward across the frame. The
// pool is created on the first Advance for the frame size and never
// shrinks; motes leaving an edge re-enter on the opposite one.
type Dust struct {
	count  int
	motes  []Mote
	width  int
	height int
	tick   float64

	noise *perlin.Perlin
	rng   *rand.Rand
}

// NewDust creates a pool of count motes. A non-positive count selects
// DustCount.
func NewDust(count int, rng *rand.Rand) *Dust {
	if count <= 0 {
		count = DustCount
	}
	return &Dust{
		count: count,
		noise: perlin.NewPerlin(2, 2, 3, rng.Int63()),
		rng:   rng,
	}
}

// Advance moves every mote one tick inside a width x height frame.
func (d *Dust) Advance(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if d.motes == nil || d.width != width || d.height != height {
		d.populate(width, height)
	}
	d.tick++

	for i := range d.motes {
		m := &d.motes[i]
		jitter := d.noise.Noise2D(m.Phase, d.tick*dustNoiseScale) * DustJitter
		m.Pos.X = wrap(m.Pos.X+m.Vel.X, float64(width))
		m.Pos.Y = wrap(m.Pos.Y+m.Vel.Y+jitter, float64(height))
	}
}

func (d *Dust) populate(width, height int) {
	d.width, d.height = width, height
	d.motes = make([]Mote, d.count)
	for i := range d.motes {
		d.motes[i] = Mote{
			Pos: geometry.Point{
				X: d.rng.Float64() * float64(width),
				Y: d.rng.Float64() * float64(height),
			},
			Vel: geometry.Point{
				X: -(0.5 + d.rng.Float64()*1.5),
				Y: (d.rng.Float64() - 0.5) * 0.4,
			},
			Size:  1 + d.rng.Intn(3),
			Phase: float64(i) * 1.7,
		}
	}
}

// Render blends the motes onto frame at a constant low alpha.
func (d *Dust) Render(frame *gocv.Mat) {
	if len(d.motes) == 0 || frame.Empty() {
		return
	}

	overlay := frame.Clone()
	defer overlay.Close()

	for _, m := range d.motes {
		gocv.Circle(&overlay, toImage(m.Pos), m.Size, DustColor, -1)
	}
	gocv.AddWeighted(*frame, 1-DustAlpha, overlay, DustAlpha, 0, frame)
}

// Motes returns a copy of the pool.
func (d *Dust) Motes() []Mote {
	out := make([]Mote, len(d.motes))
	copy(out, d.motes)
	return out
}

// wrap maps v into [0, size).
func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	if v >= size {
		v = 0
	}
	return v
}
