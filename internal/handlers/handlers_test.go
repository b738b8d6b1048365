package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/warroom"
)

func TestParseCommand(t *testing.T) {
	cmd, err := parseCommand("g")
	require.NoError(t, err)
	assert.True(t, cmd.refresh)

	cmd, err = parseCommand("  c 4 7 ")
	require.NoError(t, err)
	assert.False(t, cmd.refresh)
	assert.Equal(t, mines.Action{Move: mines.MoveChord, At: mines.At(4, 7)}, cmd.action)

	for _, line := range []string{"", "g 1", "o 1", "o a 1", "o 1 b", "q 1 1", "f 1 2 3"} {
		_, err := parseCommand(line)
		assert.Error(t, err, "%q", line)
	}
}

func TestCreateNewGameDTOSettings(t *testing.T) {
	dto, err := ParseCreateNewGameDTO(url.Values{"preset": {"expert"}, "unknown": {"1"}})
	require.NoError(t, err)
	settings, err := dto.Settings()
	require.NoError(t, err)
	assert.Equal(t, mines.KindPreset, settings.Kind)
	assert.Equal(t, 30, settings.Width)

	dto, err = ParseCreateNewGameDTO(url.Values{"width": {"10"}, "height": {"12"}, "mines": {"20"}})
	require.NoError(t, err)
	settings, err = dto.Settings()
	require.NoError(t, err)
	assert.Equal(t, mines.Custom(10, 12, 20), settings)

	dto, err = ParseCreateNewGameDTO(url.Values{"pattern": {"heart"}})
	require.NoError(t, err)
	settings, err = dto.Settings()
	require.NoError(t, err)
	assert.Equal(t, mines.Settings{Kind: mines.KindPattern, Name: "heart"}, settings)

	_, err = CreateNewGameDTO{Preset: "beginner", Pattern: "heart"}.Settings()
	assert.Error(t, err)

	_, err = ParseCreateNewGameDTO(url.Values{"width": {"wide"}})
	assert.Error(t, err)
}

func TestParseMoveDTO(t *testing.T) {
	action, err := ParseMoveDTO(url.Values{"move": {"f"}, "x": {"2"}, "y": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, mines.Action{Move: mines.MoveFlag, At: mines.At(2, 5)}, action)

	_, err = ParseMoveDTO(url.Values{"move": {"f"}, "x": {"2"}})
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", warroom.ErrGameNotFound), http.StatusNotFound},
		{warroom.ErrPatternNotFound, http.StatusNotFound},
		{warroom.ErrLiveGameExists, http.StatusConflict},
		{warroom.ErrPatternNameTaken, http.StatusConflict},
		{mines.ErrOutOfBounds, http.StatusBadRequest},
		{errors.Join(&mines.SettingsError{Field: "width", Message: "too wide"}), http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, statusFor(test.err), test.err.Error())
	}
}

func TestWrapErrorCollectsFields(t *testing.T) {
	err := fmt.Errorf("invalid settings: %w", errors.Join(
		&mines.SettingsError{Field: "width", Message: "too wide"},
		&mines.SettingsError{Field: "mines", Message: "too many"},
	))
	dto := wrapError(err)
	assert.Equal(t, []string{"width", "mines"}, dto.Fields)
	assert.Equal(t, err.Error(), dto.Error)

	assert.Empty(t, wrapError(errors.New("plain")).Fields)
}

func TestErrorResponsesAreJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	sendError(rec, logger, "fetch", warroom.ErrGameNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"game not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	sendError(rec, logger, "fetch", errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "connection reset")

	rec = httptest.NewRecorder()
	badRequest(rec, logger, &mines.SettingsError{Field: "width", Message: "too wide"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSendJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	_, err := SendJSON(rec, http.StatusOK, func() {})
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
