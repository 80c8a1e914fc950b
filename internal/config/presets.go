package config

import (
	"sort"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

func preset(width, height float64, tweak func(*pursuit.WorldConfig)) pursuit.WorldConfig {
	w := pursuit.DefaultWorld(width, height)
	if tweak != nil {
		tweak(&w)
	}
	return w
}

var Presets = map[string]pursuit.WorldConfig{
	"default": preset(800, 600, nil),
	"small":   preset(400, 300, nil),
	"large":   preset(1600, 1200, nil),
	"calm": preset(800, 600, func(w *pursuit.WorldConfig) {
		w.TargetAccelStd = 150
		w.TargetMaxSpeed = 120
		w.SpawnMinSpeed = 30
		w.SpawnMaxSpeed = 90
	}),
	"jittery": preset(800, 600, func(w *pursuit.WorldConfig) {
		w.TargetAccelStd = 1200
		w.TargetMaxSpeed = 360
	}),
}

// GetPreset returns a copy of the named world, or nil.
func GetPreset(name string) *pursuit.WorldConfig {
	w, ok := Presets[name]
	if !ok {
		return nil
	}
	return &w
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
