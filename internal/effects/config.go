// Package effects composites the procedural energy effect onto camera
// frames: heat haze, halos, fractal arcs, particles, the burst sequence,
// body lightning and screen shake.
package effects

import "image/color"

// Config holds the compositor tunables.
type Config struct {
	// BurstDuration is the length of a burst sequence in ticks.
	BurstDuration int

	// BurstShake is the shake intensity in pixels set while bursting.
	BurstShake float64

	// ShakeDecay multiplies the shake intensity every tick.
	ShakeDecay float64

	// ExposureBoost scales how much the destination is brightened by its
	// own intensity before the effect layer is added.
	ExposureBoost float64

	// FlashStrength is the white flash opacity at the start of a burst.
	FlashStrength float64

	// HazeStrength is the peak heat-haze displacement in pixels.
	HazeStrength float64

	// MaxArcs is the maximum number of arcs drawn around the charge.
	MaxArcs int

	// BurstArcs is the number of arcs radiating from a burst.
	BurstArcs int

	// AssetScale sizes the raster asset relative to the charge radius.
	AssetScale float64

	// LightningProximity is the maximum distance in pixels between two
	// silhouette boundary points joined by body lightning.
	LightningProximity float64

	// LightningBolts is the number of body-lightning arcs per tick.
	LightningBolts int
}

// DefaultConfig returns a Config with the reference tunables.
func DefaultConfig() Config {
	return Config{
		BurstDuration:      30,
		BurstShake:         20,
		ShakeDecay:         0.85,
		ExposureBoost:      0.3,
		FlashStrength:      0.7,
		HazeStrength:       6,
		MaxArcs:            4,
		BurstArcs:          8,
		AssetScale:         1.5,
		LightningProximity: 150,
		LightningBolts:     6,
	}
}

// Effect palette.
var (
	ColorGold      = color.RGBA{R: 255, G: 190, B: 40, A: 255}
	ColorYellow    = color.RGBA{R: 255, G: 255, B: 140, A: 255}
	ColorWhite     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorArc       = color.RGBA{R: 200, G: 230, B: 255, A: 255}
	ColorLightning = color.RGBA{R: 140, G: 200, B: 255, A: 255}
)
