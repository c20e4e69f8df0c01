package capture

import (
	"fmt"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera serves synthetic solid-colour frames. It can be told to fail
// after a number of reads to exercise capture-loss handling.
type MockCamera struct {
	width, height int
	fill          color.RGBA
	failAfter     int
	reads         int
	mu            sync.Mutex
	running       bool
}

// NewMockCamera creates a MockCamera delivering width x height frames.
func NewMockCamera(width, height int) *MockCamera {
	return &MockCamera{
		width:     width,
		height:    height,
		fill:      color.RGBA{R: 40, G: 40, B: 40, A: 255},
		failAfter: -1,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.reads = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if c.failAfter >= 0 && c.reads >= c.failAfter {
		return nil, fmt.Errorf("mock camera after %d reads: %w", c.reads, ErrReadFailed)
	}
	c.reads++

	mat := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	// Mats are BGR.
	mat.SetTo(gocv.NewScalar(float64(c.fill.B), float64(c.fill.G), float64(c.fill.R), 0))
	return &mat, nil
}

func (c *MockCamera) SetFPS(fps int)   {}
func (c *MockCamera) FPS() int         { return DefaultFPS }
func (c *MockCamera) Size() (int, int) { return c.width, c.height }
func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFill changes the colour of subsequent frames.
func (c *MockCamera) SetFill(fill color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fill = fill
}

// FailAfter makes ReadFrame fail once n frames have been delivered. A
// negative n never fails.
func (c *MockCamera) FailAfter(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAfter = n
}

// Reads returns the number of frames delivered since Open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
