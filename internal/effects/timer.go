package effects

// BurstTimer counts down the ticks of a burst sequence. It never goes
// below zero.
type BurstTimer struct {
	duration  int
	remaining int
}

// NewBurstTimer creates an idle timer for sequences of duration ticks.
func NewBurstTimer(duration int) *BurstTimer {
	return &BurstTimer{duration: max(duration, 1)}
}

// Trigger starts a sequence. A sequence already running is extended to at
// least the full duration, never shortened.
func (t *BurstTimer) Trigger() {
	t.remaining = max(t.remaining, t.duration)
}

// Step consumes one tick.
func (t *BurstTimer) Step() {
	if t.remaining > 0 {
		t.remaining--
	}
}

// Active reports whether a sequence is running.
func (t *BurstTimer) Active() bool {
	return t.remaining > 0
}

// Remaining returns the ticks left.
func (t *BurstTimer) Remaining() int {
	return t.remaining
}

// Duration returns the full sequence length.
func (t *BurstTimer) Duration() int {
	return t.duration
}

// SetDuration changes the length of future sequences.
func (t *BurstTimer) SetDuration(duration int) {
	t.duration = max(duration, 1)
}

// Fraction returns the remaining share of the sequence in [0, 1].
func (t *BurstTimer) Fraction() float64 {
	return min(float64(t.remaining)/float64(t.duration), 1)
}

// Reset stops any running sequence.
func (t *BurstTimer) Reset() {
	t.remaining = 0
}
