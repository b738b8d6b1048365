package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/warroom/internal/broadcast"
	"github.com/vancomm/warroom/internal/config"
	"github.com/vancomm/warroom/internal/database"
	"github.com/vancomm/warroom/internal/middleware"
	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/presence"
	"github.com/vancomm/warroom/internal/repository"
	"github.com/vancomm/warroom/internal/warroom"
)

type App struct {
	logger     *slog.Logger
	router     *mux.Router
	migrations fs.FS

	cookies  *config.Cookies
	tokens   *config.Tokens
	ws       *config.WebSocket
	game     *config.Game
	presence *config.Presence

	hub      *broadcast.Hub
	registry *presence.Registry
	coord    *warroom.Coordinator
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	app := &App{
		logger:     logger,
		router:     mux.NewRouter(),
		migrations: migrations,
	}

	return app
}

func (a *App) loadConfig() error {
	if err := config.SetupLogrus(mines.Log, presence.Log); err != nil {
		return fmt.Errorf("unable to set up engine logging: %w", err)
	}
	mines.Strict = config.Development()

	var err error
	a.cookies = config.NewCookies()
	if a.tokens, err = config.NewTokens(); err != nil {
		return err
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return err
	}
	if a.game, err = config.NewGame(); err != nil {
		return err
	}
	if a.presence, err = config.NewPresence(); err != nil {
		return err
	}
	return nil
}

// wire builds the room on top of the given stores. Configuration must be
// loaded already.
func (a *App) wire(store warroom.Store, presenceStore presence.Store) {
	a.hub = broadcast.NewHub(a.logger, a.ws.WriteTimeout, a.ws.QueueSize)
	a.registry = presence.NewRegistry(presenceStore, a.presence.ShortGrace, a.presence.DeepGrace)
	a.coord = warroom.NewCoordinator(a.logger, store, a.registry, a.hub, warroom.Options{
		Limits:   a.game.Limits,
		Debounce: a.game.Debounce,
	})
	a.loadRoutes()
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Logging(a.logger),
		middleware.Identity(a.logger, a.cookies, a.tokens),
		middleware.Cors(config.AllowedOrigins()),
	)
}

func (a *App) presenceStore(ctx context.Context, pool *pgxpool.Pool) (presence.Store, error) {
	switch a.presence.Backend {
	case config.PresenceMemory:
		return presence.NewMemoryStore(), nil
	default:
		return presence.NewSQLStore(ctx, database.OpenDB(pool), "presence")
	}
}

func (a *App) Start(ctx context.Context) error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	pool, _, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	defer pool.Close()

	presenceStore, err := a.presenceStore(ctx, pool)
	if err != nil {
		return fmt.Errorf("unable to set up presence store: %w", err)
	}
	a.wire(repository.NewRepository(pool), presenceStore)
	defer a.coord.Close()
	defer a.hub.Close()

	addr := ":" + config.Port()
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.registry.Sweep(gCtx, a.presence.SweepInterval)
	})

	return g.Wait()
}
