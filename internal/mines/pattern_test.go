package mines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	art := `
*....x
......
..X
`
	p, err := ParsePattern(" smile ", art)
	require.NoError(t, err)

	assert.Equal(t, "smile", p.Name)
	assert.Equal(t, 6, p.Width)
	assert.Equal(t, 3, p.Height)
	assert.Equal(t, []Coordinates{At(0, 0), At(5, 0), At(2, 2)}, p.Coordinates)
	assert.Equal(t, 3, p.MinesCount())
	assert.Equal(t, "*....*\n......\n..*...\n", p.String())
}

func TestParsePatternErrors(t *testing.T) {
	tests := []struct {
		name, pattern, art string
	}{
		{"empty name", "  ", "*."},
		{"no mines", "blank", "...\n..."},
		{"bad character", "bad", "*.?"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParsePattern(test.pattern, test.art)
			assert.Error(t, err)
		})
	}
}

func TestPatternNormalize(t *testing.T) {
	p := &Pattern{
		Name: "messy", Width: 3, Height: 3,
		Coordinates: []Coordinates{At(2, 2), At(0, 1), At(3, 0), At(2, 2), At(-1, 0)},
	}

	dropped := p.Normalize()

	assert.Equal(t, 3, dropped)
	assert.Equal(t, []Coordinates{At(0, 1), At(2, 2)}, p.Coordinates)
}
