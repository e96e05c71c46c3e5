package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// idleShutdown is how long the Python service may sit unused before it is stopped.
const idleShutdown = 30 * time.Second

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess
// running the hand and face mesh solutions.
type MediaPipeDetector struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	if findMediaPipeScript() == "" {
		return nil, ErrServiceNotFound
	}

	return &MediaPipeDetector{
		config: config,
	}, nil
}

// Detect analyzes a frame and returns detected hand and face landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (Landmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Landmarks{}, nil
	}

	if err := d.ensureStarted(); err != nil {
		return Landmarks{}, err
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return Landmarks{}, errors.Wrap(err, "encode frame")
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return Landmarks{}, errors.Wrap(err, "write length")
	}
	if _, err := d.stdin.Write(data); err != nil {
		return Landmarks{}, errors.Wrap(err, "write data")
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return Landmarks{}, errors.Wrap(err, "read response")
	}

	result, err := parseResponse([]byte(line), d.config)
	if err != nil {
		return Landmarks{}, err
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()

	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	scriptPath := findMediaPipeScript()
	if scriptPath == "" {
		return ErrServiceNotFound
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, scriptPath,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--max-faces", strconv.Itoa(d.config.MaxFaces),
		"--min-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "create stdin pipe")
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "create stdout pipe")
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return errors.Wrap(err, "start mediapipe service")
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.lastUsed = time.Now()
	log.Printf("MediaPipe service started: %s", scriptPath)

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".saiyan/scripts/mediapipe_service.py"),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".saiyan/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonResponse is one JSON line from the Python service, written in reply
// to each frame (4-byte big-endian length, then the JPEG bytes):
//
//	{"hands": [{"points": [{"x":0.5,"y":0.4,"z":-0.01}, ... 21 points],
//	            "handedness": "Right", "score": 0.97}],
//	 "face": {"points": [{"x":0.5,"y":0.3,"z":0}, ... 468 points]}}
//
// Coordinates are normalized to the frame. "face" is null or absent when
// no face was found. Hands with fewer than 21 points are dropped. The
// service takes --max-hands, --max-faces, --min-confidence and
// --min-tracking flags.
type jsonResponse struct {
	Hands []jsonHand `json:"hands"`
	Face  *jsonFace  `json:"face"`
}

type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

type jsonFace struct {
	Points []Point3D `json:"points"`
}

// parseResponse decodes a service line, dropping hands beyond MaxHands and
// hands with an incomplete landmark set.
func parseResponse(line []byte, config Config) (Landmarks, error) {
	var response jsonResponse
	if err := json.Unmarshal(line, &response); err != nil {
		return Landmarks{}, errors.Wrap(err, "parse response")
	}

	var result Landmarks
	for _, h := range response.Hands {
		if config.MaxHands > 0 && len(result.Hands) >= config.MaxHands {
			break
		}
		if len(h.Points) < NumLandmarks {
			continue
		}
		result.Hands = append(result.Hands, h.toHandLandmarks())
	}

	if response.Face != nil && len(response.Face.Points) > NoseTip && config.MaxFaces != 0 {
		result.Face = &FaceLandmarks{Points: response.Face.Points}
	}

	return result, nil
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	copy(lm.Points[:], h.Points)
	return lm
}
