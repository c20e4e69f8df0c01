package detector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
)

func TestBestHand(t *testing.T) {
	low := PointingHand(0.1, 0.1, 0.3)
	mid := PointingHand(0.2, 0.2, 0.7)
	high := PointingHand(0.3, 0.3, 0.9)

	tests := []struct {
		name     string
		hands    []HandLandmarks
		minScore float64
		want     float64
		wantOK   bool
	}{
		{name: "no hands"},
		{name: "highest score wins", hands: []HandLandmarks{mid, high, low}, minScore: 0.5, want: 0.9, wantOK: true},
		{name: "below threshold", hands: []HandLandmarks{low}, minScore: 0.5},
		{name: "zero threshold accepts all", hands: []HandLandmarks{low}, want: 0.3, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestHand(tt.hands, tt.minScore)
			if ok != tt.wantOK {
				t.Fatalf("BestHand() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Score != tt.want {
				t.Errorf("BestHand() score = %v, want %v", got.Score, tt.want)
			}
		})
	}
}

func TestTracker_Locate(t *testing.T) {
	tr := NewTracker(NewMockDetector(), 640, 480, 0.5)

	tests := []struct {
		name   string
		hands  []HandLandmarks
		want   game.Vec2
		wantOK bool
	}{
		{name: "no hand"},
		{name: "centre", hands: []HandLandmarks{PointingHand(0.5, 0.5, 0.9)}, want: game.Vec2{X: 320, Y: 240}, wantOK: true},
		{name: "corner", hands: []HandLandmarks{PointingHand(0, 1, 0.9)}, want: game.Vec2{X: 0, Y: 480}, wantOK: true},
		{name: "tip outside the image", hands: []HandLandmarks{PointingHand(1.2, 0.5, 0.9)}},
		{name: "unsure hand", hands: []HandLandmarks{PointingHand(0.5, 0.5, 0.2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.locate(tt.hands)
			if ok != tt.wantOK {
				t.Fatalf("locate() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("locate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type notAMat struct{}

func (notAMat) Close() error { return nil }

func TestTracker_Fingertip(t *testing.T) {
	var _ driver.Detector = (*Tracker)(nil)

	t.Run("rejects foreign frames", func(t *testing.T) {
		tr := NewTracker(NewMockDetector(), 640, 480, 0.5)
		if _, _, err := tr.Fingertip(notAMat{}); err == nil {
			t.Error("Fingertip() error = nil, want unsupported frame error")
		}
	})

	t.Run("wraps detector errors", func(t *testing.T) {
		mock := NewMockDetector()
		boom := errors.New("service crashed")
		mock.SetError(boom)
		tr := NewTracker(mock, 640, 480, 0.5)

		mat := gocv.NewMat()
		defer mat.Close()

		_, ok, err := tr.Fingertip(&mat)
		if !errors.Is(err, boom) || ok {
			t.Errorf("Fingertip() = (ok %v, err %v), want wrapped detector error", ok, err)
		}
	})

	t.Run("scales the tip", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PointingHand(0.25, 0.5, 0.95)})
		tr := NewTracker(mock, 640, 480, 0.5)

		mat := gocv.NewMat()
		defer mat.Close()

		tip, ok, err := tr.Fingertip(&mat)
		if err != nil || !ok {
			t.Fatalf("Fingertip() = (ok %v, err %v)", ok, err)
		}
		if tip != (game.Vec2{X: 160, Y: 240}) {
			t.Errorf("Fingertip() = %+v, want (160, 240)", tip)
		}
		if mock.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", mock.Calls())
		}
	})

	t.Run("close reaches the detector", func(t *testing.T) {
		mock := NewMockDetector()
		tr := NewTracker(mock, 640, 480, 0.5)
		if err := tr.Close(); err != nil || !mock.closed {
			t.Errorf("Close() = %v, closed = %v", err, mock.closed)
		}
	})
}

func TestExchange(t *testing.T) {
	t.Run("framing and decoding", func(t *testing.T) {
		var sent bytes.Buffer
		resp := `{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0}],"handedness":"Left","score":0.8}]}` + "\n"

		hands, err := exchange(&sent, bufio.NewReader(strings.NewReader(resp)), []byte("jpeg"))
		if err != nil {
			t.Fatalf("exchange() error = %v", err)
		}

		raw := sent.Bytes()
		if n := binary.BigEndian.Uint32(raw[:4]); n != 4 {
			t.Errorf("length prefix = %d, want 4", n)
		}
		if string(raw[4:]) != "jpeg" {
			t.Errorf("payload = %q, want %q", raw[4:], "jpeg")
		}

		if len(hands) != 1 {
			t.Fatalf("len(hands) = %d, want 1", len(hands))
		}
		h := hands[0]
		if h.Handedness != "Left" || h.Score != 0.8 || h.Points[Wrist].X != 0.1 {
			t.Errorf("hand = %+v", h)
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := exchange(io.Discard, bufio.NewReader(strings.NewReader("{\"hands\":[]}\n")), nil)
		if err != nil || len(hands) != 0 {
			t.Errorf("exchange() = (%v, %v), want no hands", hands, err)
		}
	})

	tests := []struct {
		name string
		resp string
	}{
		{name: "service error", resp: "{\"error\":\"model missing\"}\n"},
		{name: "garbage", resp: "not json\n"},
		{name: "closed stream", resp: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := exchange(io.Discard, bufio.NewReader(strings.NewReader(tt.resp)), nil); err == nil {
				t.Error("exchange() error = nil, want error")
			}
		})
	}
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = "/nonexistent/hand_service.py"

	if _, err := NewMediaPipeDetector(cfg, nil); err == nil {
		t.Error("NewMediaPipeDetector() error = nil, want error for a missing script")
	}
}

func TestPointingHand(t *testing.T) {
	h := PointingHand(0.4, 0.3, 0.9)

	if h.Points[IndexTip].Y >= h.Points[IndexPIP].Y || h.Points[IndexPIP].Y >= h.Points[IndexMCP].Y {
		t.Error("index finger should point up from the knuckle to the tip")
	}
	if h.Points[IndexTip].Y >= h.Points[MiddleTip].Y {
		t.Error("index tip should be above the curled middle finger")
	}
}
