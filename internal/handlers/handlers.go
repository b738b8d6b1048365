package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/warroom"
)

// SendJSON writes v as a JSON response with the given status. If v cannot
// be encoded the response is a bare 500.
func SendJSON(w http.ResponseWriter, status int, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	_, err := SendJSON(w, status, v)
	if err != nil {
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

type errorDTO struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func wrapError(err error) errorDTO {
	dto := errorDTO{Error: err.Error()}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var settingsErr *mines.SettingsError
			if errors.As(e, &settingsErr) {
				dto.Fields = append(dto.Fields, settingsErr.Field)
			}
		}
	}
	return dto
}

// statusFor maps domain errors to response codes. Anything unknown is a
// server error.
func statusFor(err error) int {
	var settingsErr *mines.SettingsError
	switch {
	case errors.Is(err, warroom.ErrGameNotFound),
		errors.Is(err, warroom.ErrPatternNotFound):
		return http.StatusNotFound
	case errors.Is(err, warroom.ErrLiveGameExists),
		errors.Is(err, warroom.ErrPatternNameTaken):
		return http.StatusConflict
	case errors.Is(err, mines.ErrOutOfBounds),
		errors.As(err, &settingsErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sendError replies with err. Server errors are logged and their details
// kept from the client.
func sendError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.Any("error", err))
		sendJSONOrLog(w, logger, status, errorDTO{Error: http.StatusText(status)})
		return
	}
	sendJSONOrLog(w, logger, status, wrapError(err))
}

func badRequest(w http.ResponseWriter, logger *slog.Logger, err error) {
	sendJSONOrLog(w, logger, http.StatusBadRequest, wrapError(err))
}
