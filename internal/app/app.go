// Package app wires the camera, hand tracker, renderer and listeners around
// a driver and runs the game.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ayusman/panicpoppers/internal/audio"
	"github.com/ayusman/panicpoppers/internal/capture"
	"github.com/ayusman/panicpoppers/internal/config"
	"github.com/ayusman/panicpoppers/internal/detector"
	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
	"github.com/ayusman/panicpoppers/internal/logger"
	"github.com/ayusman/panicpoppers/internal/metrics"
	"github.com/ayusman/panicpoppers/internal/render/cvwindow"
	"github.com/ayusman/panicpoppers/internal/render/term"
	"github.com/ayusman/panicpoppers/internal/tray"
)

// WindowTitle names the HighGUI window.
const WindowTitle = "Panic Poppers"

// eventBuffer bounds the input queue shared by keyboard, terminal and tray.
const eventBuffer = 16

// Deps replaces hardware-bound parts of the app. Nil fields are built from
// the config.
type Deps struct {
	Camera   capture.Camera
	Detector detector.Detector
	Renderer driver.Renderer
	// Sink plays sound cues; the system speaker when nil.
	Sink  audio.Sink
	Clock func() time.Time
}

// App is one running game.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	camera  capture.Camera
	tracker *detector.Tracker
	events  chan driver.Event
	metrics *metrics.Recorder
	player  *audio.Player
	tray    *tray.Tray
	driver  *driver.Driver

	closers []func()
}

// New opens the camera and builds the game described by cfg.
func New(cfg *config.Config, deps Deps, log *slog.Logger) (*App, error) {
	if log == nil {
		log = logger.With("component", "app")
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		events:  make(chan driver.Event, eventBuffer),
		metrics: metrics.New(cfg.Preset),
	}

	if err := a.openCamera(deps.Camera); err != nil {
		return nil, err
	}

	det := deps.Detector
	if det == nil {
		det = a.newDetector()
	}
	a.tracker = detector.NewTracker(det, cfg.Game.Width, cfg.Game.Height, cfg.Runtime.MinHandScore)
	a.closers = append(a.closers, func() {
		if err := a.tracker.Close(); err != nil {
			a.log.Warn("close detector", "error", err)
		}
	})

	renderer := deps.Renderer
	if renderer == nil {
		r, err := a.newRenderer()
		if err != nil {
			a.Close()
			return nil, err
		}
		renderer = r
	}

	listeners := []driver.Listener{a.metrics}
	if cfg.Runtime.Sound {
		if p, err := a.newPlayer(deps.Sink); err != nil {
			a.log.Warn("sound disabled", "error", err)
		} else {
			a.player = p
			listeners = append(listeners, p)
		}
	}
	if cfg.Runtime.Tray {
		a.tray = tray.New(a.events)
		listeners = append(listeners, a.tray)
	}

	state, err := game.New(cfg.Game, newRand(cfg.Runtime.Seed))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create game: %w", err)
	}

	a.driver = driver.New(state, cameraSource{a.camera}, a.tracker, renderer, driver.Options{
		FPS:       cfg.Runtime.FPS,
		Mirror:    cfg.Runtime.Mirror,
		Splash:    cfg.Runtime.Splash,
		Events:    a.events,
		Listeners: listeners,
		Logger:    log,
		Clock:     deps.Clock,
	})

	log.Info("game ready",
		"preset", cfg.Preset,
		"renderer", cfg.Runtime.Renderer,
		"splash", cfg.Runtime.Splash,
		"sound", a.player != nil,
		"tray", a.tray != nil)
	return a, nil
}

func (a *App) openCamera(cam capture.Camera) error {
	if cam == nil {
		cam = capture.NewCamera(capture.Config{
			DeviceID: a.cfg.Runtime.CameraID,
			Width:    a.cfg.Runtime.CameraWidth,
			Height:   a.cfg.Runtime.CameraHeight,
			FPS:      a.cfg.Runtime.FPS,
		})
	}
	if err := cam.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	w, h := cam.Size()
	a.log.Info("camera opened", "device", a.cfg.Runtime.CameraID, "width", w, "height", h)

	a.camera = cam
	a.closers = append(a.closers, func() {
		if err := cam.Close(); err != nil {
			a.log.Warn("close camera", "error", err)
		}
	})
	return nil
}

// newDetector prefers the MediaPipe service and falls back to a detector that
// never sees a hand, so the game still runs without Python.
func (a *App) newDetector() detector.Detector {
	dc := detector.DefaultConfig()
	dc.PythonPath = a.cfg.Runtime.PythonPath
	dc.ScriptPath = a.cfg.Runtime.ScriptPath
	dc.MinConfidence = a.cfg.Runtime.MinHandScore

	mp, err := detector.NewMediaPipeDetector(dc, a.log.With("component", "mediapipe"))
	if err != nil {
		a.log.Warn("MediaPipe not available, using mock detector", "error", err)
		return detector.NewMockDetector()
	}
	a.log.Info("using MediaPipe hand detection")
	return mp
}

func (a *App) newRenderer() (driver.Renderer, error) {
	rt := a.cfg.Runtime

	switch rt.Renderer {
	case config.RendererTerminal:
		r, err := term.Open(a.cfg.Game.Width, a.cfg.Game.Height, rt.PreviewInset, rt.Mirror)
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		a.closers = append(a.closers, r.Close)
		go r.Listen(a.events)
		return r, nil
	default:
		w := cvwindow.Open(WindowTitle, rt.WindowWidth, rt.WindowHeight, cvwindow.Options{
			Width:  a.cfg.Game.Width,
			Height: a.cfg.Game.Height,
			Inset:  rt.PreviewInset,
			Mirror: rt.Mirror,
			Events: a.events,
		})
		a.closers = append(a.closers, func() {
			if err := w.Close(); err != nil {
				a.log.Warn("close window", "error", err)
			}
		})
		return w, nil
	}
}

func (a *App) newPlayer(sink audio.Sink) (*audio.Player, error) {
	var (
		p   *audio.Player
		err error
	)
	if sink == nil {
		p, err = audio.Open(a.log)
	} else {
		p, err = audio.New(sink, a.log)
	}
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, p.Close)
	return p, nil
}

// Run plays until the player quits, ctx is cancelled or the camera fails.
// With the tray enabled the frame loop runs beside the tray's event loop.
func (a *App) Run(ctx context.Context) error {
	if a.tray == nil {
		return a.driver.Run(ctx)
	}

	var err error
	a.tray.Run(func() {
		err = a.driver.Run(ctx)
		a.tray.Stop()
	})
	return err
}

// Driver returns the frame driver.
func (a *App) Driver() *driver.Driver {
	return a.driver
}

// Metrics returns the session counters.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Events returns the input queue, for callers that inject their own input.
func (a *App) Events() chan<- driver.Event {
	return a.events
}

// Close logs the session totals and releases everything New opened, in
// reverse order.
func (a *App) Close() {
	a.metrics.Log(a.log)
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// IsCaptureLoss reports whether err ended the game because the camera
// stopped delivering frames.
func IsCaptureLoss(err error) bool {
	return errors.Is(err, driver.ErrFrameCapture)
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// cameraSource adapts a capture.Camera to driver.FrameSource. A failed read
// returns a nil interface rather than a typed nil *gocv.Mat.
type cameraSource struct {
	cam capture.Camera
}

func (s cameraSource) ReadFrame() (driver.Frame, error) {
	mat, err := s.cam.ReadFrame()
	if err != nil {
		return nil, err
	}
	return mat, nil
}
