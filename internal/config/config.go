// Package config loads the game preset and runtime settings from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayusman/panicpoppers/internal/game"
)

// ErrInvalidConfig is returned when an environment value cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Renderer names.
const (
	RendererWindow   = "window"
	RendererTerminal = "terminal"
)

// Runtime holds the process settings that do not change the game rules.
type Runtime struct {
	CameraID     int
	CameraWidth  int
	CameraHeight int
	FPS          int

	Renderer     string
	WindowWidth  int
	WindowHeight int
	Mirror       bool
	Splash       bool
	PreviewInset bool

	Sound bool
	Tray  bool

	// PythonPath and ScriptPath locate the hand landmark service; empty
	// values are searched for next to the binary.
	PythonPath string
	ScriptPath string
	// MinHandScore discards detections the landmark model is less sure of.
	MinHandScore float64

	// Seed fixes the target generator; 0 picks a random seed.
	Seed uint64

	LogLevel string
	LogJSON  bool
	LogFile  string
}

// Config is everything the game binary needs at startup.
type Config struct {
	Preset  string
	Game    game.Rules
	Runtime Runtime
}

// Load reads the given .env files, or ./.env when none are named, and builds
// a Config from POPPERS_* variables. A missing default .env is not an error.
// Variables already set in the environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a variable lookup function.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	name := e.getString("POPPERS_PRESET", PresetPanic)
	preset, err := LookupPreset(name)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Preset: name,
		Game:   preset.Rules,
		Runtime: Runtime{
			CameraID:     e.getInt("POPPERS_CAMERA", 0),
			CameraWidth:  e.getInt("POPPERS_CAMERA_WIDTH", 1280),
			CameraHeight: e.getInt("POPPERS_CAMERA_HEIGHT", 720),
			FPS:          e.getInt("POPPERS_FPS", 30),
			Renderer:     e.getString("POPPERS_RENDERER", RendererWindow),
			WindowWidth:  e.getInt("POPPERS_WINDOW_WIDTH", 1280),
			WindowHeight: e.getInt("POPPERS_WINDOW_HEIGHT", 720),
			Mirror:       e.getBool("POPPERS_MIRROR", true),
			Splash:       e.getBool("POPPERS_SPLASH", preset.Splash),
			PreviewInset: e.getBool("POPPERS_PREVIEW_INSET", preset.PreviewInset),
			Sound:        e.getBool("POPPERS_SOUND", true),
			Tray:         e.getBool("POPPERS_TRAY", false),
			PythonPath:   e.getString("POPPERS_PYTHON", ""),
			ScriptPath:   e.getString("POPPERS_HAND_SCRIPT", ""),
			MinHandScore: e.getFloat("POPPERS_MIN_HAND_SCORE", 0.5),
			Seed:         e.getUint("POPPERS_SEED", 0),
			LogLevel:     e.getString("POPPERS_LOG_LEVEL", "info"),
			LogJSON:      e.getBool("POPPERS_LOG_JSON", false),
			LogFile:      e.getString("POPPERS_LOG_FILE", ""),
		},
	}

	// Rule overrides for quick tuning without a new preset.
	cfg.Game.Duration = e.getDuration("POPPERS_DURATION", cfg.Game.Duration)
	cfg.Game.ActivationRadius = e.getFloat("POPPERS_RADIUS", cfg.Game.ActivationRadius)
	cfg.Game.SpeedMax = e.getInt("POPPERS_SPEED_MAX", cfg.Game.SpeedMax)

	if e.err != nil {
		return nil, e.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the runtime settings and the rules.
func (c *Config) Validate() error {
	r := c.Runtime
	switch {
	case r.Renderer != RendererWindow && r.Renderer != RendererTerminal:
		return fmt.Errorf("%w: renderer %q must be %q or %q", ErrInvalidConfig, r.Renderer, RendererWindow, RendererTerminal)
	case r.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive", ErrInvalidConfig)
	case r.CameraID < 0:
		return fmt.Errorf("%w: camera index must not be negative", ErrInvalidConfig)
	case r.WindowWidth <= 0 || r.WindowHeight <= 0:
		return fmt.Errorf("%w: window size must be positive", ErrInvalidConfig)
	case r.MinHandScore < 0 || r.MinHandScore > 1:
		return fmt.Errorf("%w: hand score %.2f outside [0,1]", ErrInvalidConfig, r.MinHandScore)
	}

	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("preset %s: %w", c.Preset, err)
	}
	return nil
}

// env parses typed values and keeps the first error.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
	}
}

func (e *env) getString(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *env) getInt(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *env) getUint(key string, def uint64) uint64 {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *env) getFloat(key string, def float64) float64 {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *env) getBool(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

func (e *env) getDuration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}
