package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how often Detect ran.
func (m *MockDetector) Calls() int { return m.calls }

// Close marks the mock closed.
func (m *MockDetector) Close() error {
	m.closed = true
	return nil
}

// PointingHand returns a right hand with the index finger extended and its
// tip at the normalized position (x, y).
func PointingHand(x, y, score float64) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      score,
	}

	h.Points[Wrist] = Point3D{X: x, Y: y + 0.45}
	h.Points[IndexMCP] = Point3D{X: x, Y: y + 0.25}
	h.Points[IndexPIP] = Point3D{X: x, Y: y + 0.15}
	h.Points[IndexDIP] = Point3D{X: x, Y: y + 0.07}
	h.Points[IndexTip] = Point3D{X: x, Y: y}

	// Remaining fingers curled near the palm.
	for _, i := range []int{ThumbTip, MiddleMCP, MiddleTip, RingTip, PinkyTip} {
		h.Points[i] = Point3D{X: x - 0.03, Y: y + 0.3, Z: -0.02}
	}

	return h
}
