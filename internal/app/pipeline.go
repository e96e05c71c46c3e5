package app

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/effects"
	"github.com/ayusman/saiyan/internal/gesture"
	"github.com/ayusman/saiyan/internal/store"
)

// Status is the published outcome of one tick.
type Status struct {
	gesture.State

	Enabled     bool    `json:"enabled"`
	Transformed bool    `json:"transformed"`
	Mode        string  `json:"mode"`
	CenterX     int     `json:"center_x"`
	CenterY     int     `json:"center_y"`
	Radius      int     `json:"radius"`
	Coverage    float64 `json:"coverage"` // silhouette, percent of frame
	Bolts       int     `json:"bolts"`
	BurstLeft   int     `json:"burst_remaining"`
	Shake       float64 `json:"shake"`
	Fragments   int     `json:"fragments"`
	FPS         float64 `json:"fps"`
}

// runPipeline is the frame loop. It reads a frame per tick and runs Tick
// on it until stopCh closes.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / FrameFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.failures++
				if a.failures%LogEvery == 1 {
					log.Printf("Error reading frame: %v", err)
				}
				continue
			}

			a.Tick(frame, now)
			frame.Close()
		}
	}
}

// Tick runs one pass of the pipeline on frame, drawing the effects into it
// in place, and publishes the result. The order is fixed: classify, react
// to gestures, body lightning, energy effect, landmarks, HUD, shake.
func (a *App) Tick(frame *gocv.Mat, now time.Time) Status {
	a.applyTunables()

	a.mu.RLock()
	t := a.tunables
	enabled := a.enabled
	a.mu.RUnlock()

	status := Status{
		Enabled: enabled,
		Mode:    effects.ModeSkipped.String(),
	}
	if frame == nil || frame.Empty() || frame.Channels() != 3 {
		return status
	}

	if enabled {
		landmarks, err := a.detector.Detect(frame)
		if err != nil {
			a.failures++
			if a.failures%LogEvery == 1 {
				log.Printf("Error detecting landmarks: %v", err)
			}
		}

		state := a.classifier.Update(landmarks.Hands, landmarks.Face, frame.Cols(), frame.Rows(), now)
		status.State = state
		a.react(state, t)

		// The masker learns the background every tick so the mask is
		// ready when a charge starts.
		if t.BodyLightning {
			mask, coverage := a.masker.Mask(frame)
			status.Coverage = coverage
			if state.Charging || a.compositor.BurstActive() {
				status.Bolts = a.compositor.DrawBodyLightning(frame, mask)
			}
			mask.Close()
		}

		a.trackOrigin(state)
		active := state.Charging || a.compositor.BurstActive()
		if active {
			mode := a.compositor.RenderEnergy(frame, a.lastCenter, a.lastRadius, a.asset, state.Bursting)
			status.Mode = mode.String()
		} else if a.rendering {
			a.compositor.Release()
		}
		a.rendering = active
		status.CenterX, status.CenterY = a.lastCenter.X, a.lastCenter.Y
		status.Radius = a.lastRadius

		if t.Landmarks {
			effects.DrawLandmarks(frame, landmarks.Hands)
		}
	} else if a.rendering || a.wasCharging {
		a.pause()
	}

	status.Transformed = a.Transformed()
	if t.HUD {
		effects.DrawHUD(frame, hudLines(enabled, status.Transformed))
	}

	a.compositor.ApplyShake(frame)

	status.BurstLeft = a.compositor.Timer().Remaining()
	status.Shake = a.compositor.ShakeIntensity()
	status.Fragments = a.compositor.Fragments()
	status.FPS = a.measureFPS(now)

	if status.Tick > 0 && status.Tick%LogEvery == 0 {
		log.Printf("tick %d: phase=%s fps=%.1f hands=%d", status.Tick, status.Phase, status.FPS, status.Hands)
	}

	a.publish(frame, status)
	return status
}

// applyTunables hands changed settings to the classifier and compositor.
func (a *App) applyTunables() {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return
	}
	t := a.tunables
	a.dirty = false
	a.mu.Unlock()

	a.classifier.SetConfig(t.Gesture)
	a.compositor.SetConfig(t.Effects)
}

// react turns gesture edges into side effects: the swipe toggle, journal
// entries and sound cues.
func (a *App) react(state gesture.State, t Tunables) {
	if state.Swipe {
		a.mu.Lock()
		a.transformed = !a.transformed
		transformed := a.transformed
		a.mu.Unlock()

		a.classifier.ResetSwipe()
		log.Printf("Swipe: transformation %s", onOff(transformed))
		if t.Sound {
			a.sound.PlayWhoosh()
		}
		a.record(store.EventSwipe, "transformation "+onOff(transformed))
	}

	if state.Charging && !a.wasCharging {
		a.record(store.EventChargeStart, fmt.Sprintf("midpoint %.0f,%.0f", state.Midpoint.X, state.Midpoint.Y))
	}

	if state.Bursting && !a.wasBursting {
		log.Println("Burst fired")
		if t.Sound {
			a.sound.PlayBoom()
		}
		a.record(store.EventBurst, fmt.Sprintf("growth %.2f", state.Growth))
	}

	if t.Sound && state.Charging && !state.Bursting {
		a.sound.Hum(0.3 + 0.7*(state.Growth-1))
	} else {
		a.sound.StopHum()
	}

	a.wasCharging = state.Charging
	a.wasBursting = state.Bursting
}

// pause drops the effect in progress when the effects are switched off
// mid-gesture, so re-enabling starts from a clean slate.
func (a *App) pause() {
	a.compositor.Reset()
	a.filter.Reset()
	a.sound.StopHum()
	a.rendering = false
	a.wasCharging = false
	a.wasBursting = false
}

// trackOrigin smooths the charge midpoint and sizes the ball. The last
// origin is kept after the hands leave so a running burst stays in place.
func (a *App) trackOrigin(state gesture.State) {
	if !state.Charging {
		a.filter.Reset()
		return
	}

	p, err := a.filter.Update(state.Midpoint)
	if err != nil {
		log.Printf("Error smoothing midpoint: %v", err)
		p = state.Midpoint
	}
	a.lastCenter = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	a.lastRadius = chargeRadius(state.Growth)
}

// chargeRadius scales the base radius with the square root of the area
// growth so the ball's area follows the hands.
func chargeRadius(growth float64) int {
	if growth <= 0 || math.IsNaN(growth) || math.IsInf(growth, 0) {
		growth = 1
	}
	r := BaseChargeRadius * math.Sqrt(growth)
	return int(math.Round(math.Max(MinChargeRadius, math.Min(MaxChargeRadius, r))))
}

var (
	pausedLine      = effects.HUDLine{Text: "EFFECTS PAUSED", Scale: 0.6, Color: color.RGBA{R: 200, G: 200, B: 200, A: 255}, Thickness: 2}
	transformedLine = effects.HUDLine{Text: "TRANSFORMED", Scale: 0.6, Color: color.RGBA{R: 255, G: 120, B: 0, A: 255}, Thickness: 2}
)

// hudLines returns the overlay text for the current state.
func hudLines(enabled, transformed bool) []effects.HUDLine {
	var lines []effects.HUDLine
	if !enabled {
		lines = append(lines, pausedLine)
	} else if transformed {
		lines = append(lines, transformedLine)
	}
	return append(lines, effects.DefaultHUD...)
}

// measureFPS keeps a running average of the tick rate.
func (a *App) measureFPS(now time.Time) float64 {
	if !a.lastTick.IsZero() {
		if dt := now.Sub(a.lastTick).Seconds(); dt > 0 {
			if a.fps == 0 {
				a.fps = 1 / dt
			} else {
				a.fps = 0.9*a.fps + 0.1/dt
			}
		}
	}
	a.lastTick = now
	return a.fps
}

// publish encodes frame for the stream and stores status.
func (a *App) publish(frame *gocv.Mat, status Status) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		a.out.Lock()
		a.status = status
		a.out.Unlock()
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.out.Lock()
	a.jpeg = data
	a.seq++
	a.status = status
	a.out.Unlock()
}

// LatestJPEG returns the last published frame and its sequence number.
func (a *App) LatestJPEG() ([]byte, uint64) {
	a.out.Lock()
	defer a.out.Unlock()
	return a.jpeg, a.seq
}

// Status returns the last published status.
func (a *App) Status() Status {
	a.out.Lock()
	defer a.out.Unlock()
	return a.status
}

// Snapshot returns the last status for the state websocket.
func (a *App) Snapshot() any {
	return a.Status()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
