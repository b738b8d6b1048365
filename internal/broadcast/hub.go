package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/presence"
)

// Conn is the part of [websocket.Conn] the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Subscriber is one websocket connection watching a game. Messages are
// queued and written by a dedicated goroutine; a subscriber that falls
// behind is disconnected.
type Subscriber struct {
	Token  string
	GameID int64

	conn Conn
	send chan Message
	once sync.Once
	done chan struct{}
}

// Done is closed once the subscriber has been dropped.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

type Hub struct {
	logger       *slog.Logger
	writeTimeout time.Duration
	queueSize    int

	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

func NewHub(logger *slog.Logger, writeTimeout time.Duration, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Hub{
		logger:       logger,
		writeTimeout: writeTimeout,
		queueSize:    queueSize,
		subs:         make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers conn and starts its writer. The hub owns conn from
// here on; call [Hub.Unsubscribe] once the reader is done with it.
func (h *Hub) Subscribe(gameID int64, token string, conn Conn) *Subscriber {
	s := &Subscriber{
		Token:  token,
		GameID: gameID,
		conn:   conn,
		send:   make(chan Message, h.queueSize),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go h.writePump(s)
	return s
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

// Connected reports whether token has any subscription left.
func (h *Hub) Connected(token string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.Token == token {
			return true
		}
	}
	return false
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) writePump(s *Subscriber) {
	for {
		select {
		case <-s.done:
			return
		case m := <-s.send:
			if h.writeTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			}
			if err := s.conn.WriteJSON(m); err != nil {
				h.logger.Debug("unable to write to subscriber",
					"token", s.Token, "error", err)
				h.Unsubscribe(s)
				return
			}
		}
	}
}

// Send queues m for a single subscriber.
func (h *Hub) Send(s *Subscriber, m Message) {
	select {
	case <-s.done:
	case s.send <- m:
	default:
		h.logger.Warn("subscriber is lagging, dropping", "token", s.Token)
		h.Unsubscribe(s)
	}
}

func (h *Hub) publish(m Message, match func(*Subscriber) bool) {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		if match(s) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		h.Send(s, m)
	}
}

func (h *Hub) inGame(gameID int64) func(*Subscriber) bool {
	return func(s *Subscriber) bool { return s.GameID == gameID }
}

// [Hub] implements [Gateway]
func (h *Hub) CellsChanged(gameID int64, cells []mines.CellView) {
	if len(cells) == 0 {
		return
	}
	h.publish(Message{Type: MessageCells, GameID: gameID, Cells: cells}, h.inGame(gameID))
}

// [Hub] implements [Gateway]
func (h *Hub) RosterChanged(roster presence.Roster) {
	h.publish(
		Message{Type: MessageRoster, Roster: &roster},
		func(*Subscriber) bool { return true },
	)
}

// [Hub] implements [Gateway]
func (h *Hub) Lifecycle(gameID int64, event mines.Event, status mines.Status) {
	h.publish(
		Message{Type: MessageLifecycle, GameID: gameID, Event: event, Status: status},
		h.inGame(gameID),
	)
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		s.close()
	}
}
