package gesture

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"

	"github.com/ayusman/saiyan/internal/geometry"
)

// MidpointFilter smooths the charge origin between the hands with a
// constant-velocity 2-D Kalman filter, so the energy ball does not jitter
// with landmark noise.
type MidpointFilter struct {
	dt      float64
	tracker *kalman_filter.Kalman2D
}

// NewMidpointFilter creates a filter stepping dt time units per update.
func NewMidpointFilter(dt float64) *MidpointFilter {
	if dt <= 0 {
		dt = 1.0
	}
	return &MidpointFilter{dt: dt}
}

// Update feeds a raw midpoint and returns the smoothed one. The first
// update after a Reset passes the raw point through.
func (f *MidpointFilter) Update(p geometry.Point) (geometry.Point, error) {
	if f.tracker == nil {
		/* Kalman filter props */
		ux := 0.0
		uy := 0.0
		stdDevA := 2.0
		stdDevMx := 4.0
		stdDevMy := 4.0
		f.tracker = kalman_filter.NewKalman2D(f.dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(p.X, p.Y))
		return p, nil
	}

	f.tracker.Predict()
	if err := f.tracker.Update(p.X, p.Y); err != nil {
		return p, errors.Wrap(err, "can't update midpoint tracker")
	}

	x, y := f.tracker.GetState()
	return geometry.Point{X: x, Y: y}, nil
}

// Reset drops the filter state; the next Update starts a new track.
func (f *MidpointFilter) Reset() {
	f.tracker = nil
}
