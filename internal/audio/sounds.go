// Package audio plays short synthesized cues for pops and session changes.
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// SampleRate is the rate every cue is generated at.
const SampleRate = beep.SampleRate(44100)

// Sound identifies a cue.
type Sound int

const (
	SoundPop Sound = iota
	SoundBuzz
	SoundStart
	SoundSurvived
	SoundLost
)

func (s Sound) String() string {
	switch s {
	case SoundPop:
		return "pop"
	case SoundBuzz:
		return "buzz"
	case SoundStart:
		return "start"
	case SoundSurvived:
		return "survived"
	case SoundLost:
		return "lost"
	default:
		return "unknown"
	}
}

type note struct {
	freq float64
	dur  time.Duration
}

// cues lists the notes of each sound, played in sequence.
var cues = map[Sound][]note{
	SoundPop:      {{880, 40 * time.Millisecond}, {1320, 60 * time.Millisecond}},
	SoundBuzz:     {{110, 180 * time.Millisecond}},
	SoundStart:    {{523.25, 90 * time.Millisecond}, {659.25, 90 * time.Millisecond}, {783.99, 140 * time.Millisecond}},
	SoundSurvived: {{523.25, 120 * time.Millisecond}, {659.25, 120 * time.Millisecond}, {783.99, 120 * time.Millisecond}, {1046.5, 300 * time.Millisecond}},
	SoundLost:     {{392, 200 * time.Millisecond}, {311.13, 200 * time.Millisecond}, {261.63, 400 * time.Millisecond}},
}

// volume is the gain of every cue in beep's base-2 scale.
const volume = -1.5

// Length returns the duration of a cue.
func Length(s Sound) time.Duration {
	var d time.Duration
	for _, n := range cues[s] {
		d += n.dur
	}
	return d
}

// Build synthesizes a cue at rate sr.
func Build(s Sound, sr beep.SampleRate) (beep.Streamer, error) {
	notes, ok := cues[s]
	if !ok {
		return nil, fmt.Errorf("build sound: unknown sound %d", s)
	}

	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(sr, n.freq)
		if err != nil {
			return nil, fmt.Errorf("build sound %s: %w", s, err)
		}
		samples := sr.N(n.dur)
		parts = append(parts, &fadeOut{
			Streamer: beep.Take(samples, tone),
			total:    samples,
		})
	}

	return &effects.Volume{
		Streamer: beep.Seq(parts...),
		Base:     2,
		Volume:   volume,
	}, nil
}

// fadeOut ramps the second half of a note down to silence to avoid clicks.
type fadeOut struct {
	beep.Streamer
	total int
	pos   int
}

func (f *fadeOut) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.Streamer.Stream(samples)
	half := f.total / 2
	for i := 0; i < n; i++ {
		if f.pos > half {
			gain := math.Max(0, float64(f.total-f.pos)/float64(f.total-half))
			samples[i][0] *= gain
			samples[i][1] *= gain
		}
		f.pos++
	}
	return n, ok
}
