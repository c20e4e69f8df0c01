package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// External cameras are told apart from built-in ones by resolution.
const (
	ExternalMinWidth = 1280
	ExternalHeight   = 720
)

// Device is the result of probing one capture index.
type Device struct {
	Index    int
	Width    int
	Height   int
	Readable bool
	Err      error
}

func (d Device) String() string {
	if d.Err != nil {
		return fmt.Sprintf("camera %d: %v", d.Index, d.Err)
	}
	return fmt.Sprintf("camera %d: %dx%d readable=%t", d.Index, d.Width, d.Height, d.Readable)
}

// IsExternal reports whether the device looks like an external webcam.
func (d Device) IsExternal() bool {
	return d.Err == nil && d.Readable && d.Width >= ExternalMinWidth && d.Height == ExternalHeight
}

// Probe opens every index below maxIndex, reads one frame and records the
// reported resolution. Devices are released before returning.
func Probe(maxIndex int) []Device {
	devices := make([]Device, 0, maxIndex)
	for i := 0; i < maxIndex; i++ {
		devices = append(devices, probeOne(i))
	}
	return devices
}

func probeOne(index int) Device {
	d := Device{Index: index}

	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		d.Err = fmt.Errorf("open: %w", err)
		return d
	}
	defer vc.Close()

	if !vc.IsOpened() {
		d.Err = fmt.Errorf("open: %w", ErrCameraNotOpen)
		return d
	}

	d.Width = int(vc.Get(gocv.VideoCaptureFrameWidth))
	d.Height = int(vc.Get(gocv.VideoCaptureFrameHeight))

	mat := gocv.NewMat()
	defer mat.Close()
	d.Readable = vc.Read(&mat) && !mat.Empty()

	return d
}

// PickDevice prefers the first external camera and falls back to the first
// readable one.
func PickDevice(devices []Device) (Device, bool) {
	for _, d := range devices {
		if d.IsExternal() {
			return d, true
		}
	}
	for _, d := range devices {
		if d.Err == nil && d.Readable {
			return d, true
		}
	}
	return Device{}, false
}
