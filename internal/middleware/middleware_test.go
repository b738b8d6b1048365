package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/warroom/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func echoParticipant() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, Participant(r.Context()))
	})
}

func TestIdentityIssuesAndKeepsParticipant(t *testing.T) {
	tokens, err := config.NewTokensWithSecret([]byte("0123456789abcdef0123"), time.Hour)
	require.NoError(t, err)
	h := Wrap(echoParticipant(), Identity(discard, &config.Cookies{}, tokens))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roster", nil))
	first := rec.Body.String()
	require.NotEmpty(t, first)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/roster", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, first, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestIdentityReplacesForgedToken(t *testing.T) {
	tokens, err := config.NewTokensWithSecret([]byte("0123456789abcdef0123"), time.Hour)
	require.NoError(t, err)
	h := Wrap(echoParticipant(), Identity(discard, &config.Cookies{}, tokens))

	req := httptest.NewRequest(http.MethodGet, "/roster", nil)
	req.AddCookie(&http.Cookie{Name: "participant", Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestLoggingRecordsStatus(t *testing.T) {
	h := Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
		Logging(discard),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
