package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// ScriptedDetector plays back a fixed landmark sequence, one entry per
// Detect call, looping at the end. It drives the demo mode when no camera
// or landmark service is available.
type ScriptedDetector struct {
	mu     sync.Mutex
	script []Landmarks
	index  int
}

// NewScriptedDetector creates a detector that replays script.
func NewScriptedDetector(script []Landmarks) *ScriptedDetector {
	return &ScriptedDetector{script: script}
}

// Detect returns the next scripted entry; the frame is ignored.
func (d *ScriptedDetector) Detect(frame *gocv.Mat) (Landmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.script) == 0 {
		return Landmarks{}, nil
	}

	entry := d.script[d.index%len(d.script)]
	d.index++
	return entry, nil
}

// Close is a no-op.
func (d *ScriptedDetector) Close() error {
	return nil
}

// Len returns the number of entries in one loop of the script.
func (d *ScriptedDetector) Len() int {
	return len(d.script)
}

// lerp interpolates between a and b at step i of n.
func lerp(a, b float64, i, n int) float64 {
	if n <= 1 {
		return b
	}
	return a + (b-a)*float64(i)/float64(n-1)
}

// grow scales every point of hand about (cx, cy) by s.
func grow(hand HandLandmarks, cx, cy, s float64) HandLandmarks {
	for i, p := range hand.Points {
		hand.Points[i] = Point3D{X: cx + (p.X-cx)*s, Y: cy + (p.Y-cy)*s, Z: p.Z}
	}
	return hand
}

// DemoScript returns a loop at 30 ticks per second: hands apart, palms
// brought together to charge while the ball grows, a push to burst, a
// release, and finally a single hand swiped across the face.
func DemoScript() []Landmarks {
	face := FaceAt(0.5, 0.3)
	const y = 0.55
	var script []Landmarks

	// Closed hands have reach 0.12; scale grows them toward the camera
	// without opening them past the burst threshold.
	pair := func(left, right, reach, scale float64) Landmarks {
		return Landmarks{
			Hands: []HandLandmarks{
				grow(SyntheticHand(left, y, reach), left, y, scale),
				grow(SyntheticHand(right, y, reach), right, y, scale),
			},
			Face: face,
		}
	}

	// Apart, then approaching the charge zone
	for i := 0; i < 30; i++ {
		script = append(script, pair(0.2, 0.8, 0.12, 1))
	}
	for i := 0; i < 20; i++ {
		script = append(script, pair(lerp(0.2, 0.45, i, 20), lerp(0.8, 0.55, i, 20), 0.12, 1))
	}

	// Charge, growing
	for i := 0; i < 60; i++ {
		script = append(script, pair(0.45, 0.55, 0.12, lerp(1, 1.4, i, 60)))
	}

	// Burst, then back to charging
	for i := 0; i < 30; i++ {
		script = append(script, pair(0.45, 0.55, 0.2, 1.4))
	}
	for i := 0; i < 20; i++ {
		script = append(script, pair(0.45, 0.55, 0.08, 1.4))
	}

	// Separate
	for i := 0; i < 20; i++ {
		script = append(script, pair(lerp(0.45, 0.2, i, 20), lerp(0.55, 0.8, i, 20), 0.12, 1))
	}

	// Swipe one hand across the nose
	for i := 0; i < 8; i++ {
		script = append(script, Landmarks{
			Hands: []HandLandmarks{SyntheticHand(lerp(0.3, 0.7, i, 8), 0.35, 0.12)},
			Face:  face,
		})
	}

	for i := 0; i < 20; i++ {
		script = append(script, Landmarks{Face: face})
	}

	return script
}
