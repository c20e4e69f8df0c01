// Package driver runs the per-frame loop of a popping session: it reads a
// camera frame, asks the detector for the fingertip, feeds the game model and
// hands the result to a renderer.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/panicpoppers/internal/game"
)

// DefaultFPS is the loop rate used when Options.FPS is not set.
const DefaultFPS = 30

// ErrFrameCapture is returned when the camera fails to deliver a frame. It
// ends the session.
var ErrFrameCapture = errors.New("frame capture failed")

// Frame is an opaque camera frame. *gocv.Mat satisfies it.
type Frame interface {
	Close() error
}

// FrameSource delivers camera frames. The caller closes each returned frame.
type FrameSource interface {
	ReadFrame() (Frame, error)
}

// Detector locates the index fingertip in a frame, scaled to the game
// board. ok is false when no hand is visible.
type Detector interface {
	Fingertip(frame Frame) (tip game.Vec2, ok bool, err error)
}

// Options configures a Driver.
type Options struct {
	// FPS is the loop rate of Run.
	FPS int
	// Mirror flips the fingertip x coordinate to match a mirrored preview.
	Mirror bool
	// Splash makes new drivers wait on the splash screen for EventStart.
	Splash bool
	// Events delivers input signals. It may be nil.
	Events <-chan Event
	// Listeners observe contacts, phase changes and frames.
	Listeners []Listener
	Logger    *slog.Logger
	// Clock returns the current time; time.Now when nil.
	Clock func() time.Time
}

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	Session      string
	Phase        game.Phase
	Bounds       game.Vec2
	Targets      []game.Target
	Fingertip    game.Vec2
	HasFingertip bool
	Radius       float64
	Score        int
	Remaining    time.Duration
	Level        int
	Outcome      game.Outcome
	Splash       bool
}

// Driver owns a game.State and advances it once per frame. It is not safe for
// concurrent use; input arrives through Options.Events.
type Driver struct {
	state    *game.State
	source   FrameSource
	detector Detector
	renderer Renderer
	opts     Options
	log      *slog.Logger
	now      func() time.Time

	session string
	started time.Time
	tip     game.Vec2
	hasTip  bool
	frames  int
}

// New creates a Driver. Without a splash screen the first session starts
// immediately.
func New(state *game.State, source FrameSource, detector Detector, renderer Renderer, opts Options) *Driver {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	d := &Driver{
		state:    state,
		source:   source,
		detector: detector,
		renderer: renderer,
		opts:     opts,
		log:      opts.Logger,
		now:      opts.Clock,
	}

	if !opts.Splash {
		d.startSession()
	}

	return d
}

// State returns the driven game state.
func (d *Driver) State() *game.State {
	return d.state
}

// Session returns the id of the current session, empty before the first one.
func (d *Driver) Session() string {
	return d.session
}

// Run steps the driver at the configured rate until a quit event, context
// cancellation or a fatal capture error.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(d.opts.FPS))
	defer ticker.Stop()

	d.log.Info("frame loop started", "fps", d.opts.FPS, "phase", d.state.Phase())

	for {
		select {
		case <-ctx.Done():
			d.log.Info("frame loop stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			running, err := d.Step()
			if err != nil {
				d.log.Error("frame loop aborted", "session", d.session, "error", err)
				return err
			}
			if !running {
				d.log.Info("frame loop stopped", "reason", "quit")
				return nil
			}
		}
	}
}

// Step handles pending input and runs one frame. It returns false once a
// quit event has been seen.
func (d *Driver) Step() (bool, error) {
	if quit := d.handleEvents(); quit {
		return false, nil
	}

	if d.state.Phase() != game.Playing {
		d.hasTip = false
		return true, d.draw(nil)
	}

	if err := d.playFrame(); err != nil {
		return false, err
	}
	return true, nil
}

// playFrame is the Playing sequence: detect, pop, move, restore the
// population invariants, ramp difficulty, check the end of the session and
// draw.
func (d *Driver) playFrame() error {
	frame, err := d.source.ReadFrame()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFrameCapture, err)
	}
	defer frame.Close()

	rules := d.state.Rules()
	elapsed := d.now().Sub(d.started)

	tip, ok, err := d.detector.Fingertip(frame)
	if err != nil {
		d.log.Warn("fingertip detection failed", "error", err)
		ok = false
	}

	d.hasTip = ok
	if ok {
		if d.opts.Mirror {
			tip.X = rules.Width - tip.X
		}
		d.tip = tip

		if res := d.state.CheckContact(tip, rules.ActivationRadius); res.Hit() {
			d.log.Debug("contact",
				"popped", len(res.Removed),
				"dropped", len(res.Dropped),
				"delta", res.ScoreDelta,
				"score", d.state.Score())
			for _, l := range d.opts.Listeners {
				l.OnContact(res)
			}
		}
	}

	d.state.Advance(1)
	d.state.EnforcePopulationBounds()
	d.state.EnforceGoodFloor()
	d.state.UpdateDifficulty(elapsed)

	if d.state.UpdatePhase(elapsed) {
		d.log.Info("session over",
			"session", d.session,
			"score", d.state.Score(),
			"outcome", d.state.Outcome(),
			"elapsed", elapsed.Round(time.Millisecond),
			"frames", d.frames)
		d.notifyPhase(game.Playing)
	}

	d.frames++
	return d.draw(frame)
}

func (d *Driver) draw(frame Frame) error {
	snap := d.Snapshot()
	for _, l := range d.opts.Listeners {
		l.OnFrame(snap)
	}
	if err := Draw(d.renderer, snap, frame); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	return nil
}

// handleEvents drains pending input without blocking and reports whether a
// quit was requested.
func (d *Driver) handleEvents() bool {
	if d.opts.Events == nil {
		return false
	}

	for {
		select {
		case ev := <-d.opts.Events:
			if d.apply(ev) {
				return true
			}
		default:
			return false
		}
	}
}

func (d *Driver) apply(ev Event) bool {
	phase := d.state.Phase()

	switch ev {
	case EventQuit:
		return true
	case EventStart:
		if phase == game.Splash {
			d.startSession()
		}
	case EventRestart:
		if phase == game.Over {
			d.startSession()
		}
	case EventSplash:
		// Variants without a splash screen stay on the game-over screen.
		if phase == game.Over && d.opts.Splash {
			d.state.ShowSplash()
			d.notifyPhase(phase)
		}
	}

	return false
}

func (d *Driver) startSession() {
	from := d.state.Phase()

	d.state.Reset()
	d.session = uuid.NewString()
	d.started = d.now()
	d.frames = 0
	d.hasTip = false

	d.log.Info("session started",
		"session", d.session,
		"targets", len(d.state.Targets()),
		"score", d.state.Score(),
		"duration", d.state.Rules().Duration)
	d.notifyPhase(from)
}

func (d *Driver) notifyPhase(from game.Phase) {
	if len(d.opts.Listeners) == 0 {
		return
	}
	snap := d.Snapshot()
	for _, l := range d.opts.Listeners {
		l.OnPhase(from, snap.Phase, snap)
	}
}

// Snapshot captures the current state for rendering. The target slice is a
// copy.
func (d *Driver) Snapshot() Snapshot {
	rules := d.state.Rules()
	return Snapshot{
		Session:      d.session,
		Phase:        d.state.Phase(),
		Bounds:       game.Vec2{X: rules.Width, Y: rules.Height},
		Targets:      append([]game.Target(nil), d.state.Targets()...),
		Fingertip:    d.tip,
		HasFingertip: d.hasTip,
		Radius:       rules.ActivationRadius,
		Score:        d.state.Score(),
		Remaining:    d.state.Remaining(),
		Level:        d.state.Level(),
		Outcome:      d.state.Outcome(),
		Splash:       d.opts.Splash,
	}
}
