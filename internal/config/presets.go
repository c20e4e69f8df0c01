package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/ayusman/panicpoppers/internal/game"
)

// Logical frame size every preset plays in. Renderers scale from it.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// Preset names.
const (
	PresetClassic = "classic"
	PresetPanic   = "panic"
)

// Food catalogs of the panic preset. The tags double as icon names.
var (
	GoodFoods = []string{"apple", "lemon", "carrot", "sprouts", "watermelon", "banana"}
	BadFoods  = []string{"fries", "hamburger", "onion", "pizza", "garlic", "chicken"}
)

// Preset is a named game variant: its rules plus the presentation defaults
// that go with them.
type Preset struct {
	Rules        game.Rules
	Splash       bool
	PreviewInset bool
}

var presets = map[string]func() Preset{
	PresetClassic: classic,
	PresetPanic:   panicPoppers,
}

// LookupPreset returns a fresh copy of the named preset.
func LookupPreset(name string) (Preset, error) {
	fn, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: unknown preset %q (have %v)", ErrInvalidConfig, name, PresetNames())
	}
	return fn(), nil
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// classic is the poke-the-dots game: alternating green and red dots, a short
// session and a symmetric score.
func classic() Preset {
	return Preset{
		Rules: game.Rules{
			Width:            FrameWidth,
			Height:           FrameHeight,
			ActivationRadius: 25,
			Duration:         20 * time.Second,
			InitialMin:       5,
			InitialMax:       9,
			MinTargets:       1,
			MaxTargets:       40,
			ReplaceMin:       1,
			ReplaceMax:       3,
			SpeedMax:         2,
			GoodReward:       5,
			BadPenalty:       5,
			Kinds:            game.KindPolicy{Alternate: true},
			GoodTags:         []string{"green"},
			BadTags:          []string{"red"},
			GoodFloorBatch:   6,
		},
	}
}

// panicPoppers ends early when the score hits zero, speeds up over time and
// removes a few extra targets on every pop.
func panicPoppers() Preset {
	return Preset{
		Rules: game.Rules{
			Width:            FrameWidth,
			Height:           FrameHeight,
			ActivationRadius: 50,
			Duration:         60 * time.Second,
			InitialMin:       10,
			InitialMax:       10,
			MinTargets:       10,
			MaxTargets:       40,
			ReplaceMin:       1,
			ReplaceMax:       3,
			SpeedMax:         3,
			Ramp: game.Ramp{
				Base:  2,
				Step:  2,
				Every: 4 * time.Second,
				Cap:   45,
			},
			GoodReward:     3,
			BadPenalty:     20,
			StartScore:     50,
			ScoreFloor:     0,
			UseScoreFloor:  true,
			Kinds:          game.KindPolicy{GoodProbability: 0.51},
			GoodTags:       append([]string(nil), GoodFoods...),
			BadTags:        append([]string(nil), BadFoods...),
			GoodFloorBatch: 6,
			BonusDrop:      game.BonusDrop{Min: 1, Max: 3},
		},
		Splash:       true,
		PreviewInset: true,
	}
}
