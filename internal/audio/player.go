package audio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
)

// Sink plays a stream without blocking.
type Sink interface {
	Play(s beep.Streamer)
}

type speakerSink struct{}

func (speakerSink) Play(s beep.Streamer) { speaker.Play(s) }

// Player turns game events into cues. It implements driver.Listener.
type Player struct {
	sink  Sink
	cache map[Sound][][2]float64
	log   *slog.Logger
}

var _ driver.Listener = (*Player)(nil)

// Open initialises the speaker and returns a Player using it.
func Open(log *slog.Logger) (*Player, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return New(speakerSink{}, log)
}

// New creates a Player for sink. Every cue is rendered once up front.
func New(sink Sink, log *slog.Logger) (*Player, error) {
	if log == nil {
		log = slog.Default()
	}

	p := &Player{
		sink:  sink,
		cache: make(map[Sound][][2]float64, len(cues)),
		log:   log,
	}
	for s := range cues {
		samples, err := render(s)
		if err != nil {
			return nil, err
		}
		p.cache[s] = samples
	}
	return p, nil
}

func render(s Sound) ([][2]float64, error) {
	st, err := Build(s, SampleRate)
	if err != nil {
		return nil, err
	}

	buf := make([][2]float64, SampleRate.N(Length(s)))
	n := 0
	for n < len(buf) {
		m, ok := st.Stream(buf[n:])
		n += m
		if !ok {
			break
		}
	}
	return buf[:n], nil
}

// Play queues a cue.
func (p *Player) Play(s Sound) {
	samples, ok := p.cache[s]
	if !ok {
		return
	}
	p.log.Debug("play sound", "sound", s)
	p.sink.Play(&buffer{samples: samples})
}

// Close stops playback and releases the audio device.
func (p *Player) Close() {
	if _, ok := p.sink.(speakerSink); ok {
		speaker.Clear()
		speaker.Close()
	}
}

// OnContact buzzes when a bad target was hit and pops otherwise.
func (p *Player) OnContact(res game.ContactResult) {
	for _, t := range res.Removed {
		if t.Kind == game.Bad {
			p.Play(SoundBuzz)
			return
		}
	}
	p.Play(SoundPop)
}

func (p *Player) OnPhase(_, to game.Phase, snap driver.Snapshot) {
	switch to {
	case game.Playing:
		p.Play(SoundStart)
	case game.Over:
		if snap.Outcome == game.Survived {
			p.Play(SoundSurvived)
		} else {
			p.Play(SoundLost)
		}
	}
}

func (p *Player) OnFrame(driver.Snapshot) {}

// buffer streams pre-rendered samples.
type buffer struct {
	samples [][2]float64
	pos     int
}

func (b *buffer) Stream(samples [][2]float64) (int, bool) {
	if b.pos >= len(b.samples) {
		return 0, false
	}
	n := copy(samples, b.samples[b.pos:])
	b.pos += n
	return n, true
}

func (b *buffer) Err() error { return nil }
