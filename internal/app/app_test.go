package app

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/capture"
	"github.com/ayusman/saiyan/internal/detector"
	"github.com/ayusman/saiyan/internal/effects"
	"github.com/ayusman/saiyan/internal/gesture"
	"github.com/ayusman/saiyan/internal/store"
)

const (
	frameW = 640
	frameH = 360
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestApp builds an app on a blank camera and a mock detector with
// sound off and no asset.
func newTestApp(t *testing.T, s *store.Store) (*App, *detector.MockDetector) {
	t.Helper()

	cam, frame := capture.NewBlankCamera(frameW, frameH)
	t.Cleanup(func() { frame.Close() })

	md := detector.NewMockDetector()
	tunables := DefaultTunables()
	tunables.Sound = false

	a := New(Config{
		Store:    s,
		Camera:   cam,
		Detector: md,
		Seed:     1,
		Tunables: tunables,
	})
	t.Cleanup(func() { a.Close() })
	return a, md
}

// clock hands out capture times 1/30 s apart.
type clock struct{ now time.Time }

func (c *clock) next() time.Time {
	c.now = c.now.Add(time.Second / 30)
	return c.now
}

func pair(reach float64) []detector.HandLandmarks {
	return []detector.HandLandmarks{
		detector.SyntheticHand(0.45, 0.5, reach),
		detector.SyntheticHand(0.55, 0.5, reach),
	}
}

func tick(t *testing.T, a *App, c *clock) Status {
	t.Helper()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 30, 30, 0), frameH, frameW, gocv.MatTypeCV8UC3)
	defer frame.Close()
	return a.Tick(&frame, c.next())
}

func countEvents(t *testing.T, s *store.Store, kind string) int {
	t.Helper()

	n, err := s.Events().Count(kind)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	return n
}

func TestApp_ChargeBurstSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	s := newTestStore(t)
	a, md := newTestApp(t, s)
	c := &clock{now: time.Unix(1000, 0)}

	status := tick(t, a, c)
	if status.Phase != gesture.PhaseIdle || status.Mode != effects.ModeSkipped.String() {
		t.Fatalf("idle tick: phase %v, mode %s", status.Phase, status.Mode)
	}
	if jpeg, seq := a.LatestJPEG(); len(jpeg) == 0 || seq != 1 {
		t.Errorf("LatestJPEG() = %d bytes, seq %d; want a frame, seq 1", len(jpeg), seq)
	}

	// Closed hands together: charge
	md.SetHands(pair(0.12))
	status = tick(t, a, c)
	if !status.Charging || status.Mode != effects.ModeCharge.String() {
		t.Fatalf("charge tick: charging %v, mode %s", status.Charging, status.Mode)
	}
	if status.Radius != BaseChargeRadius {
		t.Errorf("Radius = %d, want %d at onset", status.Radius, BaseChargeRadius)
	}
	if status.CenterX != frameW/2 || status.CenterY != frameH/2 {
		t.Errorf("center = %d,%d, want %d,%d", status.CenterX, status.CenterY, frameW/2, frameH/2)
	}
	if n := countEvents(t, s, store.EventChargeStart); n != 1 {
		t.Errorf("charge_start events = %d, want 1", n)
	}

	// Holding the charge records nothing new
	tick(t, a, c)
	if n := countEvents(t, s, store.EventChargeStart); n != 1 {
		t.Errorf("charge_start events = %d after hold, want 1", n)
	}

	// Open the hands: burst
	md.SetHands(pair(0.2))
	status = tick(t, a, c)
	if !status.Bursting || status.Mode != effects.ModeBurst.String() {
		t.Fatalf("burst tick: bursting %v, mode %s", status.Bursting, status.Mode)
	}
	if status.BurstLeft != effects.DefaultConfig().BurstDuration-1 {
		t.Errorf("BurstLeft = %d, want %d", status.BurstLeft, effects.DefaultConfig().BurstDuration-1)
	}
	if n := countEvents(t, s, store.EventBurst); n != 1 {
		t.Errorf("burst events = %d, want 1", n)
	}

	// Hands gone: the running burst finishes where it was
	md.SetHands(nil)
	status = tick(t, a, c)
	if status.Mode != effects.ModeBurst.String() {
		t.Errorf("mode after hands left = %s, want burst", status.Mode)
	}
	if status.CenterX != frameW/2 {
		t.Errorf("burst moved to x=%d", status.CenterX)
	}
	if status.Charging || status.Bursting {
		t.Error("classifier should report no gesture without hands")
	}
}

func TestApp_ReleaseDropsParticles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a, md := newTestApp(t, nil)
	c := &clock{now: time.Unix(1500, 0)}

	md.SetHands(pair(0.12))
	var status Status
	for i := 0; i < 20; i++ {
		status = tick(t, a, c)
	}
	if status.Fragments == 0 {
		t.Fatal("charge should have thrown off fragments")
	}

	// Hands apart: the effect stops and its particles go with it
	md.SetHands(nil)
	status = tick(t, a, c)
	if status.Mode != effects.ModeSkipped.String() {
		t.Fatalf("mode after release = %s, want skipped", status.Mode)
	}
	if status.Fragments != 0 {
		t.Errorf("Fragments = %d after release, want 0", status.Fragments)
	}

	for i := 0; i < 10; i++ {
		tick(t, a, c)
	}

	// A new charge starts with only what it spawns itself
	md.SetHands(pair(0.12))
	status = tick(t, a, c)
	if !status.Charging {
		t.Fatal("second charge not detected")
	}
	if status.Fragments > 1 {
		t.Errorf("Fragments = %d on the first tick of a new charge, want at most 1", status.Fragments)
	}
}

func TestApp_DisableMidCharge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	s := newTestStore(t)
	a, md := newTestApp(t, s)
	c := &clock{now: time.Unix(1700, 0)}

	md.SetHands(pair(0.12))
	for i := 0; i < 5; i++ {
		tick(t, a, c)
	}

	a.SetEnabled(false)
	if status := tick(t, a, c); status.Fragments != 0 || status.BurstLeft != 0 {
		t.Errorf("disabled tick kept %d fragments, burst %d", status.Fragments, status.BurstLeft)
	}

	// Re-enabling with the pose still held is a fresh charge
	a.SetEnabled(true)
	tick(t, a, c)
	if n := countEvents(t, s, store.EventChargeStart); n != 2 {
		t.Errorf("charge_start events = %d, want 2", n)
	}
}

func TestApp_SwipeTogglesTransformation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	s := newTestStore(t)
	a, md := newTestApp(t, s)
	c := &clock{now: time.Unix(2000, 0)}

	var mu sync.Mutex
	var kinds []string
	a.OnGesture(func(kind string) {
		mu.Lock()
		kinds = append(kinds, kind)
		mu.Unlock()
	})

	md.SetFace(detector.FaceAt(0.5, 0.3))
	md.SetHands([]detector.HandLandmarks{detector.SyntheticHand(0.3, 0.35, 0.12)})
	tick(t, a, c)

	md.SetHands([]detector.HandLandmarks{detector.SyntheticHand(0.7, 0.35, 0.12)})
	status := tick(t, a, c)
	if !status.Swipe || !status.Transformed {
		t.Fatalf("swipe tick: swipe %v, transformed %v", status.Swipe, status.Transformed)
	}
	if n := countEvents(t, s, store.EventSwipe); n != 1 {
		t.Errorf("swipe events = %d, want 1", n)
	}

	// Acknowledged: the next tick does not toggle again
	status = tick(t, a, c)
	if status.Swipe || !status.Transformed {
		t.Errorf("after ack: swipe %v, transformed %v", status.Swipe, status.Transformed)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != 1 || kinds[0] != store.EventSwipe {
		t.Errorf("gesture hook saw %v, want [swipe]", kinds)
	}
}

func TestApp_Disabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	s := newTestStore(t)
	a, md := newTestApp(t, s)
	c := &clock{now: time.Unix(3000, 0)}

	md.SetHands(pair(0.12))
	a.SetEnabled(false)
	a.SetEnabled(false)

	status := tick(t, a, c)
	if status.Enabled || status.Hands != 0 || status.Mode != effects.ModeSkipped.String() {
		t.Errorf("disabled tick: %+v", status)
	}
	if _, seq := a.LatestJPEG(); seq != 1 {
		t.Errorf("disabled app should still publish the camera frame, seq %d", seq)
	}
	if n := countEvents(t, s, store.EventToggle); n != 1 {
		t.Errorf("toggle events = %d, want 1", n)
	}

	a.SetEnabled(true)
	if status = tick(t, a, c); !status.Charging {
		t.Error("re-enabled app should classify again")
	}
}

func TestApp_DetectorError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a, md := newTestApp(t, nil)
	c := &clock{now: time.Unix(4000, 0)}

	md.SetError(errors.New("service crashed"))
	status := tick(t, a, c)
	if status.Hands != 0 || status.Phase != gesture.PhaseIdle {
		t.Errorf("failed detection should degrade to no hands, got %+v", status.State)
	}
	if _, seq := a.LatestJPEG(); seq != 1 {
		t.Errorf("frame should still publish, seq %d", seq)
	}
}

func TestApp_EmptyFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a, _ := newTestApp(t, nil)

	frame := gocv.NewMat()
	defer frame.Close()

	status := a.Tick(&frame, time.Now())
	if status.Mode != effects.ModeSkipped.String() {
		t.Errorf("mode = %s, want skipped", status.Mode)
	}
	if _, seq := a.LatestJPEG(); seq != 0 {
		t.Errorf("empty frame published, seq %d", seq)
	}
}

func TestApp_Settings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	s := newTestStore(t)
	if err := s.Settings().SetAll(map[string]string{
		"gesture.zone_distance": "250",
		"bogus.key":             "1",
	}); err != nil {
		t.Fatalf("SetAll() error = %v", err)
	}

	a, _ := newTestApp(t, s)
	if err := a.LoadSettings(); err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got := a.Tunables().Gesture.ZoneDistance; got != 250 {
		t.Errorf("ZoneDistance = %f, want 250 from the store", got)
	}

	t.Run("validate rejects unknown", func(t *testing.T) {
		err := a.Validate(map[string]string{"bogus.key": "1"})
		if !errors.Is(err, ErrUnknownSetting) {
			t.Errorf("Validate() error = %v, want ErrUnknownSetting", err)
		}
	})

	t.Run("apply persists and reaches the loop", func(t *testing.T) {
		if err := a.Apply(map[string]string{"effects.burst_duration": "5"}); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}

		stored, err := s.Settings().Get("effects.burst_duration")
		if err != nil || stored != "5" {
			t.Errorf("stored = %q, %v; want 5", stored, err)
		}
		if got := a.Settings()["effects.burst_duration"]; got != "5" {
			t.Errorf("Settings() = %q, want 5", got)
		}

		tick(t, a, &clock{now: time.Unix(5000, 0)})
		if got := a.compositor.Timer().Duration(); got != 5 {
			t.Errorf("timer duration = %d, want 5 after a tick", got)
		}
		if got := a.classifier.Config().ZoneDistance; got != 250 {
			t.Errorf("classifier zone = %f, want 250", got)
		}
	})

	t.Run("apply leaves nothing behind on error", func(t *testing.T) {
		err := a.Apply(map[string]string{"effects.max_arcs": "2", "gesture.burst_enter": "nope"})
		if !errors.Is(err, ErrInvalidSetting) {
			t.Fatalf("Apply() error = %v, want ErrInvalidSetting", err)
		}
		if _, err := s.Settings().Get("effects.max_arcs"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("rejected value was stored: %v", err)
		}
		if a.Tunables().Effects.MaxArcs != 4 {
			t.Errorf("MaxArcs = %d, want 4", a.Tunables().Effects.MaxArcs)
		}
	})
}

func TestApp_StartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a, md := newTestApp(t, nil)
	md.SetHands(pair(0.12))

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, seq := a.LatestJPEG(); seq >= 3 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	a.Stop()
	a.Stop()

	_, seq := a.LatestJPEG()
	if seq < 3 {
		t.Fatalf("published %d frames, want at least 3", seq)
	}
	if !a.Status().Charging {
		t.Error("loop should have classified the charge pose")
	}
	if a.Camera().IsOpen() {
		t.Error("camera should be closed after Stop")
	}
}
