// Package sfx synthesises the sound cues for gestures: a whoosh on swipe,
// a hum while charging and a boom on burst.
package sfx

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

const (
	sampleRate = beep.SampleRate(48000)

	// BoomDuration is the length of the burst sound.
	BoomDuration = 1200 * time.Millisecond
	// WhooshDuration is the length of the swipe sound.
	WhooshDuration = 350 * time.Millisecond
)

// Manager plays the cues through the system speaker. Every method is safe
// to call before Initialize or after it failed; playback is then a no-op.
type Manager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	hum         *HumGenerator
	humCtrl     *beep.Ctrl
	initialized bool
	seed        int64
}

// NewManager creates an uninitialised manager.
func NewManager() *Manager {
	return &Manager{
		mixer: &beep.Mixer{},
		seed:  time.Now().UnixNano(),
	}
}

// Initialize opens the speaker. Machines without an audio device return
// an error and the manager stays silent.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return errors.Wrap(err, "can't open speaker")
	}

	speaker.Play(m.mixer)
	m.initialized = true
	return nil
}

// Enabled reports whether the speaker was opened.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// PlayBoom plays the burst release.
func (m *Manager) PlayBoom() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	m.seed++
	m.add(beep.Take(sampleRate.N(BoomDuration), NewBoomGenerator(sampleRate, m.seed)))
}

// PlayWhoosh plays the swipe cue.
func (m *Manager) PlayWhoosh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	m.add(beep.Take(sampleRate.N(WhooshDuration), NewWhooshGenerator(sampleRate, WhooshDuration, 300, 2400)))
}

// Hum starts or updates the charge hum at the given level in [0, 1]. A
// running hum is not restarted.
func (m *Manager) Hum(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	if m.humCtrl != nil && !m.humCtrl.Paused {
		m.hum.SetLevel(level)
		return
	}

	m.hum = NewHumGenerator(sampleRate)
	m.hum.SetLevel(level)
	ctrl := &beep.Ctrl{Streamer: m.hum, Paused: false}
	m.humCtrl = ctrl
	m.add(ctrl)
}

// StopHum silences the charge hum.
func (m *Manager) StopHum() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.humCtrl != nil {
		speaker.Lock()
		m.humCtrl.Paused = true
		m.humCtrl.Streamer = nil
		speaker.Unlock()
		m.humCtrl = nil
	}
}

// Cleanup stops all sounds.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	speaker.Lock()
	if m.humCtrl != nil {
		m.humCtrl.Paused = true
	}
	m.mixer.Clear()
	speaker.Unlock()

	m.humCtrl = nil
	m.initialized = false
}

// add hands a streamer to the mixer while the speaker is not reading it.
func (m *Manager) add(s beep.Streamer) {
	speaker.Lock()
	m.mixer.Add(s)
	speaker.Unlock()
}
