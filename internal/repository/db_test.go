package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/vancomm/warroom/internal/mines"
)

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: liveGameIndex,
	})
	name, ok := uniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, liveGameIndex, name)

	_, ok = uniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	assert.False(t, ok)
	_, ok = uniqueViolation(errors.New("boom"))
	assert.False(t, ok)
	_, ok = uniqueViolation(nil)
	assert.False(t, ok)
}

func TestNullableTimes(t *testing.T) {
	assert.Nil(t, orNil(time.Time{}))
	assert.True(t, orZero(nil).IsZero())

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now, orZero(orNil(now)))
}

func TestGameRowPattern(t *testing.T) {
	assert.Nil(t, gameRow{}.pattern())

	name, w, h := "ring", 7, 8
	row := gameRow{
		PatternName:        &name,
		PatternWidth:       &w,
		PatternHeight:      &h,
		PatternCoordinates: []mines.Coordinates{mines.At(1, 2)},
	}
	assert.Equal(t, &mines.Pattern{
		Name: "ring", Width: 7, Height: 8,
		Coordinates: []mines.Coordinates{mines.At(1, 2)},
	}, row.pattern())
}
