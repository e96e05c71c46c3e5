// Package particle holds the three particle populations of the energy
// effect: glowing fragments thrown off the charge, ambient dust and
// debris rocks lifted from the ground. Each population owns its entities
// and follows the same per-tick order: Advance, Cull, Spawn, Render.
package particle

import (
	"image/color"
	"math"
	"math/rand"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/geometry"
)

// Energy fragment tunables.
const (
	FragmentSpawnChance = 0.4
	FragmentMinSpeed    = 2.0
	FragmentMaxSpeed    = 8.0
	FragmentMinDecay    = 0.02
	FragmentMaxDecay    = 0.05
	FragmentMaxRadius   = 4
)

// FragmentColor is the colour of a fragment at full life.
var FragmentColor = color.RGBA{R: 255, G: 230, B: 120, A: 255}

// Fragment is one glowing spark.
type Fragment struct {
	Pos   geometry.Point
	Vel   geometry.Point
	Life  float64
	Decay float64
}

// Energy is the spark population emitted by the charge.
type Energy struct {
	SpawnChance float64

	fragments []Fragment
	rng       *rand.Rand
}

// NewEnergy creates an empty population drawing randomness from rng.
func NewEnergy(rng *rand.Rand) *Energy {
	return &Energy{
		SpawnChance: FragmentSpawnChance,
		rng:         rng,
	}
}

// Spawn adds one fragment at center with probability SpawnChance.
func (e *Energy) Spawn(center geometry.Point) {
	if e.rng.Float64() >= e.SpawnChance {
		return
	}
	e.Add(center)
}

// Add unconditionally emits a fragment at center with a random radial
// velocity.
func (e *Energy) Add(center geometry.Point) {
	angle := e.rng.Float64() * 2 * math.Pi
	speed := FragmentMinSpeed + e.rng.Float64()*(FragmentMaxSpeed-FragmentMinSpeed)
	e.fragments = append(e.fragments, Fragment{
		Pos:   center,
		Vel:   geometry.Point{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
		Life:  1.0,
		Decay: FragmentMinDecay + e.rng.Float64()*(FragmentMaxDecay-FragmentMinDecay),
	})
}

// Advance moves every fragment one tick and burns down its life.
func (e *Energy) Advance() {
	for i := range e.fragments {
		f := &e.fragments[i]
		f.Pos = f.Pos.Add(f.Vel)
		f.Life -= f.Decay
	}
}

// Cull removes spent fragments.
func (e *Energy) Cull() {
	kept := e.fragments[:0]
	for _, f := range e.fragments {
		if f.Life > 0 {
			kept = append(kept, f)
		}
	}
	e.fragments = kept
}

// Render draws each fragment as a filled circle whose size and brightness
// follow its remaining life.
func (e *Energy) Render(layer *gocv.Mat) {
	for _, f := range e.fragments {
		radius := max(int(math.Round(f.Life*FragmentMaxRadius)), 1)
		gocv.Circle(layer, toImage(f.Pos), radius, scaleColor(FragmentColor, f.Life), -1)
	}
}

// Len returns the number of live fragments.
func (e *Energy) Len() int {
	return len(e.fragments)
}

// Fragments returns a copy of the live fragments.
func (e *Energy) Fragments() []Fragment {
	out := make([]Fragment, len(e.fragments))
	copy(out, e.fragments)
	return out
}

// Clear drops every fragment.
func (e *Energy) Clear() {
	e.fragments = e.fragments[:0]
}

func scaleColor(c color.RGBA, k float64) color.RGBA {
	k = geometry.Clamp(k, 0, 1)
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}
