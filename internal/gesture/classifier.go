package gesture

import (
	"log"
	"time"

	"github.com/ayusman/saiyan/internal/detector"
	"github.com/ayusman/saiyan/internal/geometry"
)

// maxHands is the number of hands whose previous position is remembered.
const maxHands = 2

// Classifier turns per-frame landmarks into gesture states. It owns all the
// temporal memory needed for that: previous hand positions, the charge
// baseline area and the burst latch. It is not safe for concurrent use;
// the frame loop calls Update once per tick.
type Classifier struct {
	config Config

	prev     [maxHands]*geometry.Point
	baseline float64
	bursting bool
	swipe    bool
	lastTime time.Time
	tick     uint64
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config Config) *Classifier {
	return &Classifier{config: config}
}

// Config returns the thresholds in use.
func (c *Classifier) Config() Config {
	return c.config
}

// SetConfig replaces the thresholds. Temporal memory is kept.
func (c *Classifier) SetConfig(config Config) {
	c.config = config
}

// ResetSwipe acknowledges a swipe reported by Update.
func (c *Classifier) ResetSwipe() {
	c.swipe = false
}

// Baseline returns the combined hand area latched at charge onset, or zero
// when no charge is in progress.
func (c *Classifier) Baseline() float64 {
	return c.baseline
}

// Update classifies one tick. hands holds 0..2 detected hands and face is
// nil when no face was found; width and height are the frame size in
// pixels and now is the capture time of the frame.
func (c *Classifier) Update(hands []detector.HandLandmarks, face *detector.FaceLandmarks, width, height int, now time.Time) State {
	var dt float64
	if !c.lastTime.IsZero() {
		dt = now.Sub(c.lastTime).Seconds()
	}
	c.lastTime = now
	c.tick++

	if len(hands) > maxHands {
		hands = hands[:maxHands]
	}

	state := State{
		Hands:  len(hands),
		Growth: 1.0,
		Tick:   c.tick,
	}

	if len(hands) == 0 {
		c.forgetHands()
		c.leaveZone()
		return c.finish(state)
	}

	centers := make([]geometry.Point, len(hands))
	for i := range hands {
		centers[i] = geometry.Centroid(hands[i].Keypoints(), width, height)
	}

	inZone := false
	if len(hands) == maxHands {
		state.Midpoint = geometry.Midpoint(centers[0], centers[1])
		state.Distance = geometry.Distance(centers[0], centers[1])
		inZone = state.Distance < c.config.ZoneDistance
	}

	if inZone {
		c.charge(hands, &state)
	} else {
		c.leaveZone()
		c.detectSwipe(centers, face, width, dt)
	}

	for i := range c.prev {
		if i < len(centers) {
			p := centers[i]
			c.prev[i] = &p
		} else {
			c.prev[i] = nil
		}
	}

	return c.finish(state)
}

// charge evaluates the charge zone: baseline latching and the burst
// Schmitt trigger.
func (c *Classifier) charge(hands []detector.HandLandmarks, state *State) {
	var openness, area float64
	for i := range hands {
		openness += hands[i].Openness()
		area += geometry.BoundingArea(hands[i].Keypoints())
	}
	openness /= float64(len(hands))

	if c.baseline == 0 && openness < c.config.ChargeOpenness && area > 0 {
		c.baseline = area
		log.Printf("Charge initiated, base area %.4f", area)
	}

	if c.bursting {
		c.bursting = openness >= c.config.BurstExit
	} else {
		c.bursting = openness >= c.config.BurstEnter
	}

	state.Charging = true
	state.Bursting = c.bursting
	state.Openness = openness
	state.Area = area
	state.Baseline = c.baseline
	if c.baseline > 0 {
		state.Growth = area / c.baseline
	}
}

// detectSwipe raises the swipe signal when a hand crossed the nose tip's x
// coordinate since the previous tick fast enough.
func (c *Classifier) detectSwipe(centers []geometry.Point, face *detector.FaceLandmarks, width int, dt float64) {
	nose, ok := face.Nose()
	if !ok || dt <= 0 {
		return
	}
	noseX := nose.X * float64(width)

	for i, center := range centers {
		prev := c.prev[i]
		if prev == nil {
			continue
		}
		if !geometry.Between(prev.X, noseX, center.X) {
			continue
		}
		velocity := geometry.Velocity(*prev, center, dt)
		if velocity > c.config.SwipeVelocity {
			c.swipe = true
			log.Printf("Swipe detected, velocity %.0f px/s", velocity)
		}
	}
}

func (c *Classifier) forgetHands() {
	for i := range c.prev {
		c.prev[i] = nil
	}
}

func (c *Classifier) leaveZone() {
	if c.baseline > 0 {
		log.Println("Hands separated, charge reset")
	}
	c.baseline = 0
	c.bursting = false
}

func (c *Classifier) finish(state State) State {
	state.Swipe = c.swipe
	switch {
	case state.Bursting:
		state.Phase = PhaseBursting
	case state.Charging:
		state.Phase = PhaseCharging
	case state.Swipe:
		state.Phase = PhaseSwiping
	default:
		state.Phase = PhaseIdle
	}
	return state
}
