package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Silhouette masking constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold on the background difference
	DiffThreshold = 25
	// DilateSize is the edge of the dilation kernel that closes holes
	DilateSize = 15
	// DefaultLearnRate is the background running-average weight per frame
	DefaultLearnRate = 0.02
)

// SilhouetteMasker separates a foreground figure from a static scene by
// differencing each frame against a slowly learned background. The result
// is a binary mask suitable for body lightning.
type SilhouetteMasker struct {
	learnRate   float64
	background  gocv.Mat // CV32FC1 running average of blurred grey frames
	kernel      gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewSilhouetteMasker creates a masker with the default learning rate.
func NewSilhouetteMasker() *SilhouetteMasker {
	return &SilhouetteMasker{
		learnRate:  DefaultLearnRate,
		background: gocv.NewMat(),
		kernel:     gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(DilateSize, DilateSize)),
	}
}

// Mask returns the foreground mask of frame as a single-channel 8-bit Mat
// (0 or 255) and the percentage of the frame it covers. The caller closes
// the returned Mat.
//
// Algorithm:
// 1. Convert frame to grayscale
// 2. Apply Gaussian blur (21x21) to reduce noise
// 3. If first frame, store as background and return an empty mask
// 4. Calculate absolute difference with the background
// 5. Threshold the difference (threshold=25) and dilate
// 6. Fold the frame into the background running average
func (m *SilhouetteMasker) Mask(frame *gocv.Mat) (gocv.Mat, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return gocv.NewMat(), 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	// A size change (new camera) restarts the model
	if m.initialized && (m.background.Rows() != blurred.Rows() || m.background.Cols() != blurred.Cols()) {
		m.initialized = false
	}

	if !m.initialized {
		blurred.ConvertTo(&m.background, gocv.MatTypeCV32F)
		m.initialized = true
		return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), blurred.Rows(), blurred.Cols(), gocv.MatTypeCV8UC1), 0
	}

	bg := gocv.NewMat()
	defer bg.Close()
	m.background.ConvertTo(&bg, gocv.MatTypeCV8U)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, bg, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	mask := gocv.NewMat()
	gocv.Dilate(thresh, &mask, m.kernel)

	coverage := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100.0

	gocv.AccumulatedWeighted(blurred, &m.background, m.learnRate)

	return mask, coverage
}

// Reset forgets the learned background; the next frame becomes the new one.
func (m *SilhouetteMasker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.background.Empty() {
		m.background.Close()
		m.background = gocv.NewMat()
	}
	m.initialized = false
}

// Close releases resources used by the masker.
func (m *SilhouetteMasker) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.background.Empty() {
		m.background.Close()
		m.background = gocv.NewMat()
	}
	if !m.kernel.Empty() {
		m.kernel.Close()
		m.kernel = gocv.NewMat()
	}
	m.initialized = false
}

// SetLearnRate sets how quickly the background absorbs the scene.
// Values outside (0, 1] are ignored.
func (m *SilhouetteMasker) SetLearnRate(rate float64) {
	if rate <= 0 || rate > 1 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.learnRate = rate
}
