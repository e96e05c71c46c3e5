package gesture

// Config holds the tunable thresholds of the classifier. Pixel values are
// calibrated for a 1280x720 frame.
type Config struct {
	// ZoneDistance is the maximum centroid distance in pixels at which two
	// hands count as held together.
	ZoneDistance float64

	// SwipeVelocity is the minimum hand speed in pixels per second for a
	// crossing of the nose to count as a swipe.
	SwipeVelocity float64

	// ChargeOpenness is the average openness below which a charge may begin.
	ChargeOpenness float64

	// BurstEnter is the average openness needed to start bursting.
	BurstEnter float64

	// BurstExit is the average openness below which bursting stops.
	BurstExit float64
}

// DefaultConfig returns a Config with the reference thresholds.
func DefaultConfig() Config {
	return Config{
		ZoneDistance:   400,
		SwipeVelocity:  300,
		ChargeOpenness: 0.5,
		BurstEnter:     0.4,
		BurstExit:      0.25,
	}
}
