package config

import (
	"errors"
	"time"

	"github.com/vancomm/warroom/internal/mines"
)

type Game struct {
	Limits   mines.Limits
	Debounce time.Duration
}

// NewGame reads board limits and the broadcast debounce window. Anything
// not set falls back to [mines.DefaultLimits].
func NewGame() (*Game, error) {
	l := mines.DefaultLimits
	var errs []error
	intVar := func(p *int, key string) {
		v, err := lookupInt(key, *p)
		*p = v
		errs = append(errs, err)
	}
	floatVar := func(p *float64, key string) {
		v, err := lookupFloat(key, *p)
		*p = v
		errs = append(errs, err)
	}

	intVar(&l.MinWidth, "BOARD_MIN_WIDTH")
	intVar(&l.MaxWidth, "BOARD_MAX_WIDTH")
	intVar(&l.MinHeight, "BOARD_MIN_HEIGHT")
	intVar(&l.MaxHeight, "BOARD_MAX_HEIGHT")
	intVar(&l.MinMines, "BOARD_MIN_MINES")
	intVar(&l.MaxMines, "BOARD_MAX_MINES")
	floatVar(&l.MinDensity, "BOARD_MIN_DENSITY")
	floatVar(&l.MaxDensity, "BOARD_MAX_DENSITY")

	debounce, err := lookupDuration("BROADCAST_DEBOUNCE", 250*time.Millisecond)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if l.MinWidth > l.MaxWidth || l.MinHeight > l.MaxHeight || l.MinMines > l.MaxMines {
		return nil, errors.New("board limits: minimum exceeds maximum")
	}
	return &Game{Limits: l, Debounce: debounce}, nil
}
