package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	blurKernel    = 21
	diffThreshold = 25
)

// MotionMeter reports how much of the picture changed between consecutive
// frames. A camera that is covered, frozen or unplugged reads close to zero.
type MotionMeter struct {
	prev   gocv.Mat
	primed bool
	mu     sync.Mutex
}

func NewMotionMeter() *MotionMeter {
	return &MotionMeter{prev: gocv.NewMat()}
}

// Measure returns the percentage of pixels that changed since the previous
// frame. ok is false for the first frame and for empty frames.
func (m *MotionMeter) Measure(frame *gocv.Mat) (percent float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return 0, false
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
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	defer blurred.CopyTo(&m.prev)
	if !m.primed || m.prev.Rows() != blurred.Rows() || m.prev.Cols() != blurred.Cols() {
		m.primed = true
		return 0, false
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100, true
}

// Close releases the stored frame.
func (m *MotionMeter) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
}
