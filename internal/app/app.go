// Package app runs the frame loop: it reads the camera, classifies the
// gestures, composites the effects and publishes the result.
package app

import (
	"image"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ayusman/saiyan/internal/capture"
	"github.com/ayusman/saiyan/internal/detector"
	"github.com/ayusman/saiyan/internal/effects"
	"github.com/ayusman/saiyan/internal/gesture"
	"github.com/ayusman/saiyan/internal/sfx"
	"github.com/ayusman/saiyan/internal/store"
)

// Pipeline constants.
const (
	// FrameFPS is the target tick rate of the frame loop.
	FrameFPS = 30
	// BaseChargeRadius is the energy ball radius in pixels at growth 1.
	BaseChargeRadius = 60
	// MinChargeRadius and MaxChargeRadius bound the grown radius.
	MinChargeRadius = 20
	MaxChargeRadius = 240
	// LogEvery is the tick interval of the periodic status log line.
	LogEvery = 300
)

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Camera   capture.Camera
	Detector detector.Detector

	// AssetPaths are tried in order for the energy ball image. None
	// loading falls back to the procedural core.
	AssetPaths []string

	// Seed seeds every random source of the effects. Zero uses the clock.
	Seed int64

	Tunables Tunables
}

// DefaultTunables returns the reference thresholds with every overlay on.
func DefaultTunables() Tunables {
	return Tunables{
		Gesture:       gesture.DefaultConfig(),
		Effects:       effects.DefaultConfig(),
		BodyLightning: true,
		Landmarks:     true,
		HUD:           true,
		Sound:         true,
	}
}

// DefaultConfig returns a Config with default tunables. Camera and
// Detector are chosen by New when left nil.
func DefaultConfig() Config {
	return Config{
		AssetPaths: []string{"assets/power_ball.png", "assets/energy.png"},
		Tunables:   DefaultTunables(),
	}
}

// App is the main application that ties capture, gesture classification
// and effect compositing together.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	filter     *gesture.MidpointFilter
	compositor *effects.Compositor
	masker     *capture.SilhouetteMasker
	asset      *effects.Asset
	sound      *sfx.Manager

	mu          sync.RWMutex
	tunables    Tunables
	dirty       bool
	enabled     bool
	transformed bool
	onGesture   func(kind string)
	stopCh      chan struct{}
	doneCh      chan struct{}

	// Frame loop state, only touched by Tick
	wasCharging bool
	wasBursting bool
	rendering   bool
	lastCenter  image.Point
	lastRadius  int
	lastTick    time.Time
	fps         float64
	failures    int

	out    sync.Mutex
	jpeg   []byte
	seq    uint64
	status Status
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if config.Camera == nil {
		config.Camera = capture.NewCamera(capture.DefaultConfig())
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detector:   config.Detector,
		classifier: gesture.NewClassifier(config.Tunables.Gesture),
		filter:     gesture.NewMidpointFilter(1.0 / FrameFPS),
		compositor: effects.NewCompositor(config.Tunables.Effects, rand.New(rand.NewSource(seed))),
		masker:     capture.NewSilhouetteMasker(),
		sound:      sfx.NewManager(),
		tunables:   config.Tunables,
		enabled:    true,
		lastRadius: BaseChargeRadius,
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe landmark detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if len(config.AssetPaths) > 0 {
		if asset, err := effects.LoadFirstAsset(config.AssetPaths...); err == nil {
			a.asset = asset
			log.Printf("Loaded energy asset %dx%d", asset.Size().X, asset.Size().Y)
		} else {
			log.Printf("No energy asset (%v), using procedural core", err)
		}
	}

	return a
}

// LoadSettings reads persisted tunables from the store. Stored values that
// are unknown or invalid are skipped with a log line.
func (a *App) LoadSettings() error {
	if a.config.Store == nil {
		return nil
	}

	stored, err := a.config.Store.Settings().All()
	if err != nil {
		return errors.Wrap(err, "can't load settings")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Related keys such as the burst thresholds only validate together, so
	// try the whole set before falling back to key by key.
	if next, err := a.tunables.With(stored); err == nil {
		a.tunables = next
	} else {
		for key, value := range stored {
			next, err := a.tunables.With(map[string]string{key: value})
			if err != nil {
				log.Printf("Ignoring stored setting: %v", err)
				continue
			}
			a.tunables = next
		}
	}
	a.dirty = true

	log.Printf("Loaded %d settings from database", len(stored))
	return nil
}

// Settings returns the current tunables as strings.
func (a *App) Settings() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tunables.Values()
}

// Tunables returns the current tunables.
func (a *App) Tunables() Tunables {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tunables
}

// Validate checks values without applying them.
func (a *App) Validate(values map[string]string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, err := a.tunables.With(values)
	return err
}

// Apply validates values, persists them and hands them to the frame loop,
// which picks them up at the start of its next tick.
func (a *App) Apply(values map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := a.tunables.With(values)
	if err != nil {
		return err
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetAll(values); err != nil {
			return errors.Wrap(err, "can't persist settings")
		}
	}

	a.tunables = next
	a.dirty = true
	return nil
}

// SetEnabled turns the effects on or off. The stream keeps running with
// the plain camera image while disabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if changed {
		state := "off"
		if enabled {
			state = "on"
		}
		log.Printf("Effects %s", state)
		a.record(store.EventToggle, "effects "+state)
	}
}

// IsEnabled returns whether the effects are currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Transformed reports the state flipped by the face swipe.
func (a *App) Transformed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transformed
}

// OnGesture registers fn to be called with the event kind of every
// recorded gesture. fn runs on the frame loop and must not block.
func (a *App) OnGesture(fn func(kind string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = fn
}

// Start opens the camera and the speaker and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return errors.Wrap(err, "can't start pipeline")
	}
	a.camera.SetFPS(FrameFPS)

	if a.tunables.Sound {
		if err := a.sound.Initialize(); err != nil {
			log.Printf("Sound disabled: %v", err)
		}
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Frame loop started")
	return nil
}

// Stop halts the frame loop and waits for it to finish.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.sound.Cleanup()

	log.Println("Frame loop stopped")
}

// Close stops the loop and releases the detector, masker and asset.
func (a *App) Close() error {
	a.Stop()

	a.masker.Close()
	if err := a.asset.Close(); err != nil {
		log.Printf("Error closing asset: %v", err)
	}
	if a.detector != nil {
		return a.detector.Close()
	}
	return nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// record appends an event to the journal and notifies the gesture hook.
func (a *App) record(kind, detail string) {
	if a.config.Store != nil {
		if err := a.config.Store.Events().Record(&store.Event{Kind: kind, Detail: detail}); err != nil {
			log.Printf("Error recording %s event: %v", kind, err)
		}
	}

	a.mu.RLock()
	fn := a.onGesture
	a.mu.RUnlock()
	if fn != nil {
		fn(kind)
	}
}
