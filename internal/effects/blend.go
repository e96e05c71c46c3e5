package effects

import (
	"gocv.io/x/gocv"
)

// AdditiveMerge composes layer onto frame: every frame pixel is brightened
// by boost times its own intensity, then the layer is added, so the result
// is frame*(1+boost) + layer. Both steps saturate at 255. A negative boost
// counts as zero.
func AdditiveMerge(frame *gocv.Mat, layer gocv.Mat, boost float64) {
	if frame.Empty() || layer.Empty() {
		return
	}
	if frame.Rows() != layer.Rows() || frame.Cols() != layer.Cols() || frame.Type() != layer.Type() {
		return
	}

	gocv.AddWeighted(*frame, 1+max(boost, 0), layer, 1, 0, frame)
}

// newLayer returns a black layer shaped like frame.
func newLayer(frame gocv.Mat) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frame.Rows(), frame.Cols(), frame.Type())
}

// blurKernel returns an odd Gaussian kernel edge close to size.
func blurKernel(size int) int {
	size = max(size, 3)
	if size%2 == 0 {
		size++
	}
	return size
}
