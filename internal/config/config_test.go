package config

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/presence"
)

func TestNewGameDefaults(t *testing.T) {
	g, err := NewGame()
	require.NoError(t, err)
	assert.Equal(t, mines.DefaultLimits, g.Limits)
	assert.Equal(t, 250*time.Millisecond, g.Debounce)
}

func TestNewGameFromEnv(t *testing.T) {
	t.Setenv("BOARD_MAX_WIDTH", "40")
	t.Setenv("BOARD_MAX_DENSITY", "0.5")
	t.Setenv("BROADCAST_DEBOUNCE", "1s")

	g, err := NewGame()
	require.NoError(t, err)
	assert.Equal(t, 40, g.Limits.MaxWidth)
	assert.Equal(t, 0.5, g.Limits.MaxDensity)
	assert.Equal(t, time.Second, g.Debounce)
}

func TestNewGameInvalid(t *testing.T) {
	t.Setenv("BOARD_MIN_MINES", "lots")
	t.Setenv("BROADCAST_DEBOUNCE", "-1s")
	_, err := NewGame()
	assert.ErrorContains(t, err, "BOARD_MIN_MINES")
	assert.ErrorContains(t, err, "BROADCAST_DEBOUNCE")

	t.Setenv("BOARD_MIN_MINES", "400")
	t.Setenv("BROADCAST_DEBOUNCE", "1s")
	_, err = NewGame()
	assert.Error(t, err)
}

func TestNewPresence(t *testing.T) {
	p, err := NewPresence()
	require.NoError(t, err)
	assert.Equal(t, PresencePostgres, p.Backend)
	assert.Equal(t, presence.DefaultShortGrace, p.ShortGrace)
	assert.Equal(t, presence.DefaultDeepGrace, p.DeepGrace)

	t.Setenv("PRESENCE_BACKEND", "redis")
	_, err = NewPresence()
	assert.Error(t, err)

	t.Setenv("PRESENCE_BACKEND", "memory")
	t.Setenv("PRESENCE_DEEP_GRACE", "1s")
	_, err = NewPresence()
	assert.Error(t, err)
}

func TestTokens(t *testing.T) {
	tokens, err := NewTokensWithSecret([]byte("0123456789abcdef0123"), time.Hour)
	require.NoError(t, err)

	participant, token, err := tokens.Issue()
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, participant, claims.Participant())

	other, err := NewTokensWithSecret([]byte("fedcba9876543210fedc"), time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.Error(t, err)

	_, err = tokens.Parse("not a token")
	assert.Error(t, err)

	_, err = NewTokensWithSecret([]byte("short"), time.Hour)
	assert.Error(t, err)
}

func TestCookiesRoundTrip(t *testing.T) {
	t.Setenv("COOKIES_SECURE", "0")
	cookies := NewCookies()

	rec := httptest.NewRecorder()
	cookies.Refresh(rec, "signed-token", time.Hour)

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	token, err := cookies.ParticipantToken(req)
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}
