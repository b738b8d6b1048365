package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/warroom/internal/config"
)

type CtxKey int

const (
	CtxParticipant CtxKey = iota
)

// Participant returns the token of the participant making the request.
func Participant(ctx context.Context) string {
	p, _ := ctx.Value(CtxParticipant).(string)
	return p
}

// Identity makes sure every request carries a participant. Requests
// without a valid cookie get a fresh one.
func Identity(logger *slog.Logger, cookies *config.Cookies, tokens *config.Tokens) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var participant string
			token, err := cookies.ParticipantToken(r)
			if err == nil {
				if claims, err := tokens.Parse(token); err == nil {
					participant = claims.Participant()
				} else {
					logger.Debug("rejected participant token", slog.Any("error", err))
				}
			}

			if participant == "" {
				participant, token, err = tokens.Issue()
				if err != nil {
					logger.Error("unable to issue participant token", slog.Any("error", err))
					cookies.Clear(w)
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				cookies.Refresh(w, token, tokens.Lifetime())
			}

			ctx := context.WithValue(r.Context(), CtxParticipant, participant)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
