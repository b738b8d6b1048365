package mines

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type SettingsKind int

const (
	KindPreset SettingsKind = iota
	KindCustom
	KindPattern
)

func (k SettingsKind) String() string {
	switch k {
	case KindPreset:
		return "preset"
	case KindCustom:
		return "custom"
	case KindPattern:
		return "pattern"
	default:
		return fmt.Sprintf("SettingsKind(%d)", int(k))
	}
}

// Settings describe the board to generate for a new game. Name is the
// preset name for presets and the pattern name for patterns.
type Settings struct {
	Kind   SettingsKind `json:"kind"`
	Name   string       `json:"name,omitempty"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Mines  int          `json:"mines"`
}

var presets = []Settings{
	{Kind: KindPreset, Name: "beginner", Width: 9, Height: 9, Mines: 10},
	{Kind: KindPreset, Name: "intermediate", Width: 16, Height: 16, Mines: 40},
	{Kind: KindPreset, Name: "expert", Width: 30, Height: 16, Mines: 99},
}

func Presets() []Settings {
	return slices.Clone(presets)
}

func Preset(name string) (Settings, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Settings{}, &SettingsError{Field: "preset", Message: fmt.Sprintf("unknown preset %q", name)}
}

func Custom(width, height, mines int) Settings {
	return Settings{Kind: KindCustom, Width: width, Height: height, Mines: mines}
}

func FromPattern(p *Pattern) Settings {
	return Settings{
		Kind:   KindPattern,
		Name:   p.Name,
		Width:  p.Width,
		Height: p.Height,
		Mines:  p.MinesCount(),
	}
}

// Limits bound what custom and pattern boards may look like.
type Limits struct {
	MinWidth, MaxWidth   int
	MinHeight, MaxHeight int
	MinMines, MaxMines   int
	MinDensity           float64
	MaxDensity           float64
}

var DefaultLimits = Limits{
	MinWidth: 6, MaxWidth: 30,
	MinHeight: 6, MaxHeight: 30,
	MinMines: 4, MaxMines: 299,
	MinDensity: 0.10, MaxDensity: 0.33,
}

type SettingsError struct {
	Field   string
	Message string
}

// [SettingsError] implements [error]
func (e *SettingsError) Error() string {
	return e.Field + ": " + e.Message
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &SettingsError{field, fmt.Sprintf("%d is outside [%d, %d]", v, lo, hi)}
	}
	return nil
}

// Validate checks settings against limits. All problems are reported at
// once, joined with [errors.Join].
func (s Settings) Validate(l Limits) error {
	switch s.Kind {
	case KindPreset:
		p, err := Preset(s.Name)
		if err != nil {
			return err
		}
		if p != s {
			return &SettingsError{"preset", fmt.Sprintf("%q does not match its definition", s.Name)}
		}
		return nil
	case KindCustom:
		errs := []error{
			checkRange("width", s.Width, l.MinWidth, l.MaxWidth),
			checkRange("height", s.Height, l.MinHeight, l.MaxHeight),
			checkRange("mines", s.Mines, l.MinMines, l.MaxMines),
		}
		if s.Width > 0 && s.Height > 0 {
			density := float64(s.Mines) / float64(s.Width*s.Height)
			if density < l.MinDensity || density > l.MaxDensity {
				errs = append(errs, &SettingsError{"mines", fmt.Sprintf(
					"density %.0f%% is outside [%.0f%%, %.0f%%]",
					density*100, l.MinDensity*100, l.MaxDensity*100,
				)})
			}
		}
		return errors.Join(errs...)
	case KindPattern:
		errs := []error{
			checkRange("width", s.Width, l.MinWidth, l.MaxWidth),
			checkRange("height", s.Height, l.MinHeight, l.MaxHeight),
		}
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, &SettingsError{"pattern", "name must not be empty"})
		}
		if s.Mines < 1 || s.Mines > s.Width*s.Height-1 {
			errs = append(errs, &SettingsError{"mines", fmt.Sprintf(
				"%d mines do not fit a %dx%d pattern", s.Mines, s.Width, s.Height,
			)})
		}
		return errors.Join(errs...)
	default:
		return &SettingsError{"kind", fmt.Sprintf("unknown settings kind %v", s.Kind)}
	}
}
