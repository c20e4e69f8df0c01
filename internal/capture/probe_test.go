package capture

import (
	"errors"
	"testing"
)

func TestPickDevice(t *testing.T) {
	builtin := Device{Index: 0, Width: 640, Height: 480, Readable: true}
	external := Device{Index: 1, Width: 1920, Height: 720, Readable: true}
	hd := Device{Index: 2, Width: 1920, Height: 1080, Readable: true}
	broken := Device{Index: 3, Err: errors.New("busy")}
	frozen := Device{Index: 4, Width: 1280, Height: 720}

	tests := []struct {
		name    string
		devices []Device
		want    int
		wantOK  bool
	}{
		{name: "external preferred", devices: []Device{builtin, external}, want: 1, wantOK: true},
		{name: "1080p is not the external profile", devices: []Device{hd, builtin}, want: 2, wantOK: true},
		{name: "unreadable external skipped", devices: []Device{frozen, builtin}, want: 0, wantOK: true},
		{name: "errors skipped", devices: []Device{broken, builtin}, want: 0, wantOK: true},
		{name: "nothing usable", devices: []Device{broken, frozen}},
		{name: "no devices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickDevice(tt.devices)
			if ok != tt.wantOK {
				t.Fatalf("PickDevice() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Index != tt.want {
				t.Errorf("PickDevice() = camera %d, want %d", got.Index, tt.want)
			}
		})
	}
}

func TestDevice_String(t *testing.T) {
	d := Device{Index: 1, Width: 1280, Height: 720, Readable: true}
	if got, want := d.String(), "camera 1: 1280x720 readable=true"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	d = Device{Index: 2, Err: errors.New("busy")}
	if got, want := d.String(), "camera 2: busy"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestProbe_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	devices := Probe(2)
	if len(devices) != 2 {
		t.Fatalf("len(Probe(2)) = %d, want 2", len(devices))
	}
	for i, d := range devices {
		if d.Index != i {
			t.Errorf("devices[%d].Index = %d", i, d.Index)
		}
		t.Log(d)
	}
}
