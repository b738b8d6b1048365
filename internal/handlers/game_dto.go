package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/warroom/internal/mines"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

// CreateNewGameDTO selects a board: a preset by name, a stored pattern by
// name, or custom dimensions.
type CreateNewGameDTO struct {
	Preset  string `schema:"preset"`
	Pattern string `schema:"pattern"`
	Width   int    `schema:"width"`
	Height  int    `schema:"height"`
	Mines   int    `schema:"mines"`
}

func ParseCreateNewGameDTO(src map[string][]string) (CreateNewGameDTO, error) {
	var dto CreateNewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (dto CreateNewGameDTO) Settings() (mines.Settings, error) {
	switch {
	case dto.Preset != "" && dto.Pattern != "":
		return mines.Settings{}, fmt.Errorf("preset and pattern are mutually exclusive")
	case dto.Preset != "":
		return mines.Preset(dto.Preset)
	case dto.Pattern != "":
		return mines.Settings{Kind: mines.KindPattern, Name: dto.Pattern}, nil
	default:
		return mines.Custom(dto.Width, dto.Height, dto.Mines), nil
	}
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	mines.Coordinates
}

func ParseMoveDTO(src map[string][]string) (mines.Action, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.Action{}, err
	}
	move, err := mines.ParseMove(dto.Move)
	if err != nil {
		return mines.Action{}, err
	}
	return mines.Action{Move: move, At: dto.Coordinates}, nil
}

type GameDTO struct {
	GameID     string           `json:"game_id"`
	Status     mines.Status     `json:"status"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	MinesCount int              `json:"mines_count"`
	Pattern    string           `json:"pattern,omitempty"`
	Clicks     int              `json:"clicks"`
	Cells      []mines.CellView `json:"cells"`
	Stats      *mines.Stats     `json:"stats,omitempty"`
	StartedAt  *int64           `json:"started_at,omitempty"`
	EndedAt    *int64           `json:"ended_at,omitempty"`
}

func unixMilli(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func NewGameDTO(g *mines.Game) *GameDTO {
	status, cells := g.Snapshot()
	dto := &GameDTO{
		GameID:     strconv.FormatInt(g.ID, 10),
		Status:     status,
		Width:      g.Board.Width,
		Height:     g.Board.Height,
		MinesCount: g.Board.MinesCount,
		Clicks:     g.Clicks,
		Cells:      mines.Views(cells, status.Over()),
		Stats:      g.Stats,
		StartedAt:  unixMilli(g.StartedAt),
		EndedAt:    unixMilli(g.EndedAt),
	}
	if g.Board.Pattern != nil {
		dto.Pattern = g.Board.Pattern.Name
	}
	return dto
}

type MoveResultDTO struct {
	Move          mines.Move       `json:"move"`
	Status        mines.Status     `json:"status"`
	Changed       []mines.CellView `json:"changed"`
	Events        []mines.Event    `json:"events,omitempty"`
	Exploded      bool             `json:"exploded,omitempty"`
	ChordRejected bool             `json:"chord_rejected,omitempty"`
}

func NewMoveResultDTO(res mines.Result) *MoveResultDTO {
	return &MoveResultDTO{
		Move:          res.Move,
		Status:        res.Status,
		Changed:       mines.Views(res.Changed, res.Status.Over()),
		Events:        res.Events,
		Exploded:      res.Exploded,
		ChordRejected: res.ChordRejected,
	}
}

type CreatePatternDTO struct {
	Name string `json:"name"`
	Art  string `json:"art"`
}
