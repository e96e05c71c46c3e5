package effects

import (
	"image"
	"math"
	"math/rand"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/fractal"
	"github.com/ayusman/saiyan/internal/geometry"
	"github.com/ayusman/saiyan/internal/particle"
)

// Mode is the rendering path taken by one RenderEnergy call.
type Mode int

const (
	// ModeSkipped means nothing was drawn, e.g. for an empty frame.
	ModeSkipped Mode = iota
	// ModeCharge is the normal charging render.
	ModeCharge
	// ModeBurst is the burst sequence.
	ModeBurst
)

// String returns the lowercase name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeCharge:
		return "charge"
	case ModeBurst:
		return "burst"
	default:
		return "skipped"
	}
}

// Compositor owns all cross-tick effect state: the burst timer, the
// particle populations, the shake and the animation tick. It is driven
// from a single goroutine, once per frame.
type Compositor struct {
	config Config
	rng    *rand.Rand

	timer  *BurstTimer
	shake  *Shake
	energy *particle.Energy
	dust   *particle.Dust
	rocks  *particle.Rocks

	tick int
}

// NewCompositor creates a Compositor. rng drives every random choice so
// a seeded source gives reproducible frames.
func NewCompositor(config Config, rng *rand.Rand) *Compositor {
	return &Compositor{
		config: config,
		rng:    rng,
		timer:  NewBurstTimer(config.BurstDuration),
		shake:  NewShake(config.ShakeDecay, rng),
		energy: particle.NewEnergy(rng),
		dust:   particle.NewDust(particle.DustCount, rng),
		rocks:  particle.NewRocks(rng),
	}
}

// Config returns the tunables in use.
func (c *Compositor) Config() Config {
	return c.config
}

// SetConfig replaces the tunables. A running burst keeps its remaining
// ticks.
func (c *Compositor) SetConfig(config Config) {
	c.config = config
	c.timer.SetDuration(config.BurstDuration)
	c.shake.SetDecay(config.ShakeDecay)
}

// Timer returns the burst timer.
func (c *Compositor) Timer() *BurstTimer {
	return c.timer
}

// BurstActive reports whether a burst sequence is still running.
func (c *Compositor) BurstActive() bool {
	return c.timer.Active()
}

// ShakeIntensity returns the current shake intensity in pixels.
func (c *Compositor) ShakeIntensity() float64 {
	return c.shake.Intensity()
}

// Fragments returns the number of live energy fragments.
func (c *Compositor) Fragments() int {
	return c.energy.Len()
}

// RenderEnergy draws one tick of the energy effect at center onto frame.
// burst requests a burst; while the burst timer runs the burst sequence is
// drawn instead of the charge. Exactly one of the two paths runs per call.
func (c *Compositor) RenderEnergy(frame *gocv.Mat, center image.Point, baseRadius int, asset *Asset, burst bool) Mode {
	if frame.Empty() || frame.Channels() != 3 {
		return ModeSkipped
	}
	c.tick++

	if burst {
		c.timer.Trigger()
	}

	if c.timer.Active() {
		c.renderBurst(frame, center, baseRadius)
		c.timer.Step()
		return ModeBurst
	}

	c.renderCharge(frame, center, baseRadius, asset)
	return ModeCharge
}

func (c *Compositor) renderCharge(frame *gocv.Mat, center image.Point, radius int, asset *Asset) {
	radius = max(radius, 1)
	origin := toPoint(center)

	ApplyHaze(frame, center, radius*2, c.config.HazeStrength, c.tick)

	c.dust.Advance(frame.Cols(), frame.Rows())
	c.dust.Render(frame)

	c.rocks.Advance()
	c.rocks.Cull()
	c.rocks.Spawn(origin, float64(radius), frame.Rows())
	c.rocks.Render(frame)

	layer := newLayer(*frame)
	defer layer.Close()

	c.drawHalos(&layer, center, radius)

	arcs := c.rng.Intn(c.config.MaxArcs + 1)
	for i := 0; i < arcs; i++ {
		angle := c.rng.Float64() * 2 * math.Pi
		reach := float64(radius) * (1 + c.rng.Float64())
		end := origin.Add(geometry.Point{X: math.Cos(angle) * reach, Y: math.Sin(angle) * reach})
		fractal.Draw(&layer, origin, end, ColorArc, 2, float64(radius)/3, c.rng)
	}

	c.energy.Advance()
	c.energy.Cull()
	c.energy.Spawn(origin)
	c.energy.Render(&layer)

	if asset.Valid() {
		asset.Composite(&layer, center, int(float64(radius)*c.config.AssetScale*2))
	}

	gocv.Circle(&layer, center, max(radius/3, 2), ColorWhite, -1)

	AdditiveMerge(frame, layer, c.config.ExposureBoost)
}

// drawHalos draws the outer gold and inner yellow glow, pulsing with the
// tick.
func (c *Compositor) drawHalos(layer *gocv.Mat, center image.Point, radius int) {
	pulse := 1 + 0.15*math.Sin(float64(c.tick)*0.3)
	outer := int(float64(radius) * 1.6 * pulse)
	inner := int(float64(radius) * pulse)

	halo := newLayer(*layer)
	defer halo.Close()
	gocv.Circle(&halo, center, outer, ColorGold, -1)
	gocv.Circle(&halo, center, inner, ColorYellow, -1)

	k := blurKernel(radius)
	gocv.GaussianBlur(halo, layer, image.Pt(k, k), 0, 0, gocv.BorderDefault)
}

func (c *Compositor) renderBurst(frame *gocv.Mat, center image.Point, radius int) {
	radius = max(radius, 1)
	fraction := c.timer.Fraction()
	progress := 1 - fraction
	origin := toPoint(center)
	span := float64(max(frame.Cols(), frame.Rows()))

	layer := newLayer(*frame)
	defer layer.Close()

	bloom := newLayer(*frame)
	defer bloom.Close()
	gocv.Circle(&bloom, center, radius*3, ColorGold, -1)
	gocv.Circle(&bloom, center, radius*2, ColorYellow, -1)
	k := blurKernel(radius * 2)
	gocv.GaussianBlur(bloom, &layer, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	for i := 1; i <= 3; i++ {
		r := radius + int(progress*span*float64(i)/3)
		gocv.Circle(&layer, center, r, ColorYellow, 6-i)
	}

	arcs := c.config.BurstArcs
	for i := 0; i < arcs; i++ {
		angle := float64(i)*2*math.Pi/float64(arcs) + (c.rng.Float64()-0.5)*0.4
		reach := span * (0.5 + c.rng.Float64()*0.5)
		end := origin.Add(geometry.Point{X: math.Cos(angle) * reach, Y: math.Sin(angle) * reach})
		fractal.Draw(&layer, origin, end, ColorArc, 3, reach/8, c.rng)
	}

	AdditiveMerge(frame, layer, c.config.ExposureBoost)

	if flash := c.config.FlashStrength * fraction; flash > 0 {
		white := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), frame.Rows(), frame.Cols(), frame.Type())
		defer white.Close()
		gocv.AddWeighted(*frame, 1-flash, white, flash, 0, frame)
	}

	c.shake.Set(c.config.BurstShake)
}

// ApplyShake translates the finished frame by this tick's shake offset and
// decays the intensity. It must be the last drawing step of a tick.
func (c *Compositor) ApplyShake(frame *gocv.Mat) image.Point {
	return c.shake.Apply(frame)
}

// Debris returns the number of live rocks.
func (c *Compositor) Debris() int {
	return c.rocks.Len()
}

// Release drops the fragments and rocks of a finished effect. Call it on
// the first tick RenderEnergy is no longer called, so the next charge
// starts with fresh populations instead of resuming stale ones.
func (c *Compositor) Release() {
	c.energy.Clear()
	c.rocks.Clear()
}

// Reset clears all cross-tick state, including a running burst and shake.
func (c *Compositor) Reset() {
	c.timer.Reset()
	c.Release()
	c.shake = NewShake(c.config.ShakeDecay, c.rng)
}
