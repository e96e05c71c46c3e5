// Package gesture classifies per-frame hand and face landmarks into
// discrete gesture states: swipes across the face and the two-handed
// charge and burst pose.
package gesture

import "github.com/ayusman/saiyan/internal/geometry"

// Phase is the dominant gesture for a tick.
type Phase int

const (
	// PhaseIdle means no gesture is in progress.
	PhaseIdle Phase = iota
	// PhaseSwiping means a hand crossed the face fast enough this tick.
	PhaseSwiping
	// PhaseCharging means both hands are held together in the charge zone.
	PhaseCharging
	// PhaseBursting means the charge is being released.
	PhaseBursting
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseSwiping:
		return "swiping"
	case PhaseCharging:
		return "charging"
	case PhaseBursting:
		return "bursting"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler so phases serialize by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the classifier output for a single tick.
type State struct {
	Phase Phase `json:"phase"`

	// Swipe is edge triggered and stays set until the caller acknowledges
	// it with Classifier.ResetSwipe.
	Swipe bool `json:"swipe"`

	// Charging and Bursting are level triggered: they hold for as long as
	// their conditions do.
	Charging bool `json:"charging"`
	Bursting bool `json:"bursting"`

	Hands    int            `json:"hands"`
	Midpoint geometry.Point `json:"midpoint"` // pixels, valid with two hands
	Distance float64        `json:"distance"` // pixels between hand centroids
	Openness float64        `json:"openness"` // average over both hands
	Area     float64        `json:"area"`     // combined bbox area, normalized
	Baseline float64        `json:"baseline"` // area latched at charge onset
	Growth   float64        `json:"growth"`   // Area / Baseline, 1 when unlatched
	Tick     uint64         `json:"tick"`
}
