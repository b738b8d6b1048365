package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/warroom/internal/broadcast"
	"github.com/vancomm/warroom/internal/middleware"
	"github.com/vancomm/warroom/internal/mines"
)

// command is one line sent over the websocket: a move followed by its
// coordinates ("o 3 4"), or "g" to ask for the whole board.
type command struct {
	refresh bool
	action  mines.Action
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, errors.New("empty command")
	}
	if fields[0] == "g" {
		if len(fields) != 1 {
			return command{}, errors.New("g takes no arguments")
		}
		return command{refresh: true}, nil
	}
	move, err := mines.ParseMove(fields[0])
	if err != nil {
		return command{}, err
	}
	if len(fields) != 3 {
		return command{}, fmt.Errorf("%s expects x and y", fields[0])
	}
	x, err := strconv.Atoi(fields[1])
	if err != nil {
		return command{}, fmt.Errorf("bad x: %w", err)
	}
	y, err := strconv.Atoi(fields[2])
	if err != nil {
		return command{}, fmt.Errorf("bad y: %w", err)
	}
	return command{action: mines.Action{Move: move, At: mines.At(x, y)}}, nil
}

func (g GameHandler) sendBoard(ctx context.Context, sub *broadcast.Subscriber) error {
	game, err := g.coord.Game(ctx, sub.GameID)
	if err != nil {
		return err
	}
	status, cells := game.Snapshot()
	g.hub.Send(sub, broadcast.Message{
		Type:   broadcast.MessageCells,
		GameID: game.ID,
		Cells:  mines.Views(cells, status.Over()),
		Status: status,
	})
	return nil
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, err := g.coord.Game(r.Context(), id); err != nil {
		sendError(w, g.logger, "unable to fetch game", err)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade connection", slog.Any("error", err))
		return
	}

	participant := middleware.Participant(r.Context())
	logger := g.logger.With(slog.Int64("game", id), slog.String("participant", participant))

	ctx := context.WithoutCancel(r.Context())
	sub := g.hub.Subscribe(id, participant, conn)
	defer func() {
		g.hub.Unsubscribe(sub)
		// the participant stays in the room while another tab is open
		if g.hub.Connected(participant) {
			return
		}
		if err := g.coord.Leave(ctx, participant); err != nil {
			logger.Error("unable to leave", slog.Any("error", err))
		}
	}()

	if err := g.coord.Join(ctx, participant); err != nil {
		logger.Error("unable to join", slog.Any("error", err))
		return
	}

	if err := g.sendBoard(ctx, sub); err != nil {
		logger.Error("unable to send board", slog.Any("error", err))
		return
	}

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read", slog.Any("error", err))
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		for _, line := range strings.Split(strings.TrimSpace(string(message)), "\n") {
			cmd, err := parseCommand(line)
			if err != nil {
				g.hub.Send(sub, broadcast.Message{Type: broadcast.MessageError, Error: err.Error()})
				continue
			}
			if cmd.refresh {
				err = g.sendBoard(ctx, sub)
			} else {
				_, err = g.coord.Act(ctx, id, participant, cmd.action)
			}
			if err == nil {
				continue
			}
			if statusFor(err) == http.StatusInternalServerError {
				logger.Error("command failed", slog.String("command", line), slog.Any("error", err))
				return
			}
			g.hub.Send(sub, broadcast.Message{Type: broadcast.MessageError, Error: err.Error()})
		}
	}
}
