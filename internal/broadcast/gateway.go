package broadcast

import (
	"github.com/vancomm/warroom/internal/mines"
	"github.com/vancomm/warroom/internal/presence"
)

// Gateway receives everything participants need to re-render. Calls must
// not block on delivery.
type Gateway interface {
	CellsChanged(gameID int64, cells []mines.CellView)
	RosterChanged(roster presence.Roster)
	Lifecycle(gameID int64, event mines.Event, status mines.Status)
}

type MessageType string

const (
	MessageCells     MessageType = "cells"
	MessageRoster    MessageType = "roster"
	MessageLifecycle MessageType = "lifecycle"
	MessageError     MessageType = "error"
)

type Message struct {
	Type   MessageType      `json:"type"`
	GameID int64            `json:"game_id,omitempty"`
	Cells  []mines.CellView `json:"cells,omitempty"`
	Roster *presence.Roster `json:"roster,omitempty"`
	Event  mines.Event      `json:"event,omitempty"`
	Status mines.Status     `json:"status,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Nop drops everything. Used where nobody is listening.
type Nop struct{}

func (Nop) CellsChanged(int64, []mines.CellView)       {}
func (Nop) RosterChanged(presence.Roster)              {}
func (Nop) Lifecycle(int64, mines.Event, mines.Status) {}
