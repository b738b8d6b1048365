package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vancomm/warroom/internal/broadcast"
	"github.com/vancomm/warroom/internal/config"
	"github.com/vancomm/warroom/internal/middleware"
	"github.com/vancomm/warroom/internal/warroom"
)

type GameHandler struct {
	logger *slog.Logger
	coord  *warroom.Coordinator
	hub    *broadcast.Hub
	ws     *config.WebSocket
}

func NewGameHandler(
	logger *slog.Logger,
	coord *warroom.Coordinator,
	hub *broadcast.Hub,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		logger: logger,
		coord:  coord,
		hub:    hub,
		ws:     ws,
	}
}

func gameID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (g GameHandler) Current(w http.ResponseWriter, r *http.Request) {
	game, err := g.coord.CurrentGame(r.Context())
	if err != nil {
		sendError(w, g.logger, "unable to fetch current game", err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, NewGameDTO(game))
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateNewGameDTO(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	settings, err := dto.Settings()
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}

	game, err := g.coord.NewGame(r.Context(), settings)
	if err != nil {
		sendError(w, g.logger, "unable to create game", err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusCreated, NewGameDTO(game))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	game, err := g.coord.Game(r.Context(), id)
	if err != nil {
		sendError(w, g.logger, "unable to fetch game", err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, NewGameDTO(game))
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	action, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}

	participant := middleware.Participant(r.Context())
	res, err := g.coord.Act(r.Context(), id, participant, action)
	if err != nil {
		sendError(w, g.logger, "unable to make a move", err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, NewMoveResultDTO(res))
}

func (g GameHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		limit = n
	}
	scores, err := g.coord.Highscores(r.Context(), limit)
	if err != nil {
		sendError(w, g.logger, "unable to fetch highscores", err)
		return
	}
	if scores == nil {
		scores = []warroom.Highscore{}
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, scores)
}

func (g GameHandler) Roster(w http.ResponseWriter, r *http.Request) {
	roster, err := g.coord.Roster(r.Context())
	if err != nil {
		sendError(w, g.logger, "unable to fetch roster", err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, roster)
}

func (g GameHandler) CreatePattern(w http.ResponseWriter, r *http.Request) {
	var dto CreatePatternDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&dto); err != nil {
		badRequest(w, g.logger, err)
		return
	}
	p, err := g.coord.CreatePattern(r.Context(), dto.Name, dto.Art)
	if err != nil {
		sendError(w, g.logger, "unable to create pattern", err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusCreated, p)
}

func (g GameHandler) FetchPattern(w http.ResponseWriter, r *http.Request) {
	p, err := g.coord.Pattern(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		sendError(w, g.logger, "unable to fetch pattern", err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, p)
}
