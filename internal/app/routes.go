package app

import (
	"net/http"

	"github.com/vancomm/warroom/internal/config"
	"github.com/vancomm/warroom/internal/handlers"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(a.logger, a.coord, a.hub, a.ws)

	r := a.router
	if base := config.BasePath(); base != "" {
		r = a.router.PathPrefix(base).Subrouter()
	}

	r.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	g := r.PathPrefix("/game").Subrouter()
	g.HandleFunc("", game.Current).Methods(http.MethodGet)
	g.HandleFunc("", game.NewGame).Methods(http.MethodPost)
	g.HandleFunc("/{id:[0-9]+}", game.Fetch).Methods(http.MethodGet)
	g.HandleFunc("/{id:[0-9]+}/move", game.MakeAMove).Methods(http.MethodPost)
	g.HandleFunc("/{id:[0-9]+}/connect", game.ConnectWS).Methods(http.MethodGet)

	r.HandleFunc("/highscores", game.Highscores).Methods(http.MethodGet)
	r.HandleFunc("/roster", game.Roster).Methods(http.MethodGet)
	r.HandleFunc("/patterns", game.CreatePattern).Methods(http.MethodPost)
	r.HandleFunc("/patterns/{name}", game.FetchPattern).Methods(http.MethodGet)
}
