package app

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ayusman/panicpoppers/internal/capture"
	"github.com/ayusman/panicpoppers/internal/config"
	"github.com/ayusman/panicpoppers/internal/detector"
	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
	"github.com/ayusman/panicpoppers/internal/render/raster"
)

type countingSink struct {
	mu    sync.Mutex
	plays int
}

func (s *countingSink) Play(beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
}

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()

	cfg, err := config.FromEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	return cfg
}

type harness struct {
	app    *App
	camera *capture.MockCamera
	det    *detector.MockDetector
	sink   *countingSink
	now    time.Time
}

func newHarness(t *testing.T, env map[string]string) *harness {
	t.Helper()

	cfg := testConfig(t, env)
	h := &harness{
		camera: capture.NewMockCamera(320, 240),
		det:    detector.NewMockDetector(),
		sink:   &countingSink{},
		now:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	a, err := New(cfg, Deps{
		Camera:   h.camera,
		Detector: h.det,
		Renderer: raster.New(320, 240, raster.Options{Width: cfg.Game.Width, Height: cfg.Game.Height}),
		Sink:     h.sink,
		Clock:    func() time.Time { return h.now },
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Close)

	h.app = a
	return h
}

func TestApp_PopsEveryTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	h := newHarness(t, map[string]string{
		"POPPERS_PRESET": config.PresetClassic,
		"POPPERS_RADIUS": "2000",
		"POPPERS_SEED":   "42",
	})
	h.det.SetHands([]detector.HandLandmarks{detector.PointingHand(0.5, 0.5, 0.9)})

	d := h.app.Driver()
	if d.State().Phase() != game.Playing {
		t.Fatalf("phase = %v, want playing without splash", d.State().Phase())
	}

	running, err := d.Step()
	if err != nil || !running {
		t.Fatalf("Step() = %v, %v", running, err)
	}

	reg := h.app.Metrics().Registry()
	if n, err := testutil.GatherAndCount(reg, "poppers_pops_total"); err != nil || n == 0 {
		t.Errorf("pops series = %d, %v; want at least one", n, err)
	}
	expected := `
# HELP poppers_frames_total Frames rendered
# TYPE poppers_frames_total counter
poppers_frames_total{preset="classic"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "poppers_frames_total"); err != nil {
		t.Error(err)
	}

	// start cue plus one pop or buzz
	if h.sink.plays != 2 {
		t.Errorf("sound plays = %d, want 2", h.sink.plays)
	}
	if h.det.Calls() != 1 {
		t.Errorf("detector calls = %d, want 1", h.det.Calls())
	}
}

func TestApp_SessionRunsOut(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	h := newHarness(t, map[string]string{
		"POPPERS_PRESET":   config.PresetClassic,
		"POPPERS_DURATION": "5s",
	})
	d := h.app.Driver()

	h.now = h.now.Add(5 * time.Second)
	if _, err := d.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if d.State().Phase() != game.Over {
		t.Fatalf("phase = %v, want over", d.State().Phase())
	}

	h.app.Events() <- driver.EventRestart
	if _, err := d.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if d.State().Phase() != game.Playing {
		t.Errorf("phase = %v, want playing after restart", d.State().Phase())
	}
}

func TestApp_CaptureLoss(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	h := newHarness(t, map[string]string{"POPPERS_PRESET": config.PresetClassic})
	h.camera.FailAfter(1)
	d := h.app.Driver()

	if _, err := d.Step(); err != nil {
		t.Fatalf("first Step() error = %v", err)
	}
	running, err := d.Step()
	if running || !IsCaptureLoss(err) {
		t.Errorf("Step() = %v, %v; want capture loss", running, err)
	}
}

func TestApp_SplashQuit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	h := newHarness(t, map[string]string{
		"POPPERS_PRESET": config.PresetPanic,
		"POPPERS_SOUND":  "false",
	})
	d := h.app.Driver()

	if d.State().Phase() != game.Splash {
		t.Fatalf("phase = %v, want splash", d.State().Phase())
	}

	h.app.Events() <- driver.EventQuit
	running, err := d.Step()
	if running || err != nil {
		t.Errorf("Step() = %v, %v; want quit", running, err)
	}
	if h.sink.plays != 0 {
		t.Errorf("sound plays = %d with sound off", h.sink.plays)
	}
}

func TestNewRand(t *testing.T) {
	a, b := newRand(9), newRand(9)
	for range 5 {
		if a.Uint64() != b.Uint64() {
			t.Fatal("same seed gave different sequences")
		}
	}
}
