package app

import (
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ayusman/saiyan/internal/effects"
	"github.com/ayusman/saiyan/internal/gesture"
)

var (
	// ErrUnknownSetting is returned for a key no tunable answers to.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrInvalidSetting is returned for a value that does not parse or is
	// out of range.
	ErrInvalidSetting = errors.New("invalid setting")
)

// Tunables is everything that can be changed while running.
type Tunables struct {
	Gesture gesture.Config
	Effects effects.Config

	BodyLightning bool
	Landmarks     bool
	HUD           bool
	Sound         bool
}

// tunable binds one settings key to a field of Tunables.
type tunable struct {
	get func(t *Tunables) string
	set func(t *Tunables, value string) error
}

func floatSetting(field func(t *Tunables) *float64, lo, hi float64) tunable {
	return tunable{
		get: func(t *Tunables) string {
			return strconv.FormatFloat(*field(t), 'g', -1, 64)
		},
		set: func(t *Tunables, value string) error {
			v, err := strconv.ParseFloat(value, 64)
			// NaN compares false against both bounds
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
				return ErrInvalidSetting
			}
			*field(t) = v
			return nil
		},
	}
}

func intSetting(field func(t *Tunables) *int, lo, hi int) tunable {
	return tunable{
		get: func(t *Tunables) string {
			return strconv.Itoa(*field(t))
		},
		set: func(t *Tunables, value string) error {
			v, err := strconv.Atoi(value)
			if err != nil || v < lo || v > hi {
				return ErrInvalidSetting
			}
			*field(t) = v
			return nil
		},
	}
}

func boolSetting(field func(t *Tunables) *bool) tunable {
	return tunable{
		get: func(t *Tunables) string {
			return strconv.FormatBool(*field(t))
		},
		set: func(t *Tunables, value string) error {
			v, err := strconv.ParseBool(value)
			if err != nil {
				return ErrInvalidSetting
			}
			*field(t) = v
			return nil
		},
	}
}

// tunables maps every settings key to its field.
var tunables = map[string]tunable{
	"gesture.zone_distance":   floatSetting(func(t *Tunables) *float64 { return &t.Gesture.ZoneDistance }, 1, 5000),
	"gesture.swipe_velocity":  floatSetting(func(t *Tunables) *float64 { return &t.Gesture.SwipeVelocity }, 1, 100000),
	"gesture.charge_openness": floatSetting(func(t *Tunables) *float64 { return &t.Gesture.ChargeOpenness }, 0, 1),
	"gesture.burst_enter":     floatSetting(func(t *Tunables) *float64 { return &t.Gesture.BurstEnter }, 0, 1),
	"gesture.burst_exit":      floatSetting(func(t *Tunables) *float64 { return &t.Gesture.BurstExit }, 0, 1),

	"effects.burst_duration":      intSetting(func(t *Tunables) *int { return &t.Effects.BurstDuration }, 1, 600),
	"effects.burst_shake":         floatSetting(func(t *Tunables) *float64 { return &t.Effects.BurstShake }, 0, 200),
	"effects.shake_decay":         floatSetting(func(t *Tunables) *float64 { return &t.Effects.ShakeDecay }, 0, 0.99),
	"effects.exposure_boost":      floatSetting(func(t *Tunables) *float64 { return &t.Effects.ExposureBoost }, 0, 2),
	"effects.flash_strength":      floatSetting(func(t *Tunables) *float64 { return &t.Effects.FlashStrength }, 0, 1),
	"effects.haze_strength":       floatSetting(func(t *Tunables) *float64 { return &t.Effects.HazeStrength }, 0, 50),
	"effects.max_arcs":            intSetting(func(t *Tunables) *int { return &t.Effects.MaxArcs }, 0, 32),
	"effects.burst_arcs":          intSetting(func(t *Tunables) *int { return &t.Effects.BurstArcs }, 0, 64),
	"effects.asset_scale":         floatSetting(func(t *Tunables) *float64 { return &t.Effects.AssetScale }, 0.1, 10),
	"effects.lightning_proximity": floatSetting(func(t *Tunables) *float64 { return &t.Effects.LightningProximity }, 1, 2000),
	"effects.lightning_bolts":     intSetting(func(t *Tunables) *int { return &t.Effects.LightningBolts }, 0, 64),

	"app.body_lightning": boolSetting(func(t *Tunables) *bool { return &t.BodyLightning }),
	"app.landmarks":      boolSetting(func(t *Tunables) *bool { return &t.Landmarks }),
	"app.hud":            boolSetting(func(t *Tunables) *bool { return &t.HUD }),
	"app.sound":          boolSetting(func(t *Tunables) *bool { return &t.Sound }),
}

// SettingKeys returns every known settings key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(tunables))
	for key := range tunables {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Values renders t as settings strings.
func (t Tunables) Values() map[string]string {
	values := make(map[string]string, len(tunables))
	for key, tn := range tunables {
		values[key] = tn.get(&t)
	}
	return values
}

// With returns a copy of t with values applied. Nothing is changed unless
// every value is valid.
func (t Tunables) With(values map[string]string) (Tunables, error) {
	next := t
	for key, value := range values {
		tn, ok := tunables[key]
		if !ok {
			return t, errors.Wrapf(ErrUnknownSetting, "%q", key)
		}
		if err := tn.set(&next, value); err != nil {
			return t, errors.Wrapf(err, "%s=%q", key, value)
		}
	}

	if next.Gesture.BurstExit >= next.Gesture.BurstEnter {
		return t, errors.Wrap(ErrInvalidSetting, "gesture.burst_exit must be below gesture.burst_enter")
	}

	return next, nil
}
