package plays

import (
	"strconv"
	"strings"

	"playsync/lib/web/bgg"
)

// Play is a single logged play session of a game, together with its local
// sync state. The four timestamps are mutually informative: SyncTimestamp is
// the last successful remote confirmation, UpdateTimestamp marks an unpushed
// local edit, DirtyTimestamp marks local-only state that must survive a
// remote overwrite, and DeleteTimestamp marks an unconfirmed local delete.
type Play struct {
	PlayID   int64
	Date     string
	GameID   int64
	GameName string
	Quantity int
	Length   int
	// StartTime and Length are mutually exclusive in storage; a play with a
	// recorded length has its start time dropped.
	StartTime  int64
	Incomplete bool
	NoWinStats bool
	Location   string
	Comments   string
	Subtypes   []string
	Players    []Player

	SyncTimestamp   int64
	UpdateTimestamp int64
	DirtyTimestamp  int64
	DeleteTimestamp int64
}

// Player is one participant in a Play. UserID is 0 for a non-member guest;
// Username is the unique key among non-guest players within a play.
type Player struct {
	Username         string
	UserID           int64
	Name             string
	StartingPosition string
	Color            string
	Score            string
	IsNew            bool
	Rating           float64
	IsWin            bool
}

// FromResponse maps one remote play record into the domain model.
func FromResponse(r *bgg.PlayResponse) Play {
	p := Play{
		PlayID:     r.ID,
		Date:       r.Date,
		GameID:     r.Item.ObjectID,
		GameName:   r.Item.Name,
		Quantity:   r.Quantity,
		Length:     r.Length,
		Incomplete: r.Incomplete != 0,
		NoWinStats: r.NoWinStats != 0,
		Location:   r.Location,
		Comments:   strings.TrimSpace(r.Comments),
	}
	for _, s := range r.Item.Subtypes {
		p.Subtypes = append(p.Subtypes, s.Value)
	}
	for _, pl := range r.Players {
		p.Players = append(p.Players, Player{
			Username:         pl.Username,
			UserID:           pl.UserID,
			Name:             pl.Name,
			StartingPosition: pl.StartPosition,
			Color:            pl.Color,
			Score:            pl.Score,
			IsNew:            pl.New != 0,
			Rating:           pl.Rating,
			IsWin:            pl.Win != 0,
		})
	}
	return p
}

// FromResponsePage maps a whole page of remote play records.
func FromResponsePage(r *bgg.PlaysResponse) []Play {
	out := make([]Play, 0, len(r.Plays))
	for i := range r.Plays {
		out = append(out, FromResponse(&r.Plays[i]))
	}
	return out
}

// IsBoardgameSubtype reports whether the play is eligible for persistence.
// Plays logged only against expansions carry a non-boardgame subtype set and
// are filtered out.
func (p *Play) IsBoardgameSubtype() bool {
	if len(p.Subtypes) == 0 {
		return true
	}
	for _, subtype := range p.Subtypes {
		if strings.HasPrefix(subtype, "boardgame") {
			return true
		}
	}
	return false
}

func (p *Play) PlayerCount() int {
	return len(p.Players)
}

// seat parses a starting position as a 1-based seat number, or -1.
func (pl *Player) seat() int {
	n, err := strconv.Atoi(strings.TrimSpace(pl.StartingPosition))
	if err != nil {
		return -1
	}
	return n
}

// ArePlayersCustomSorted reports whether the player list encodes a
// non-default seating order: every seat 1..n must be claimed by some player,
// otherwise the order is custom.
func (p *Play) ArePlayersCustomSorted() bool {
	if len(p.Players) == 0 {
		return false
	}
	for seat := 1; seat <= len(p.Players); seat++ {
		claimed := false
		for i := range p.Players {
			if p.Players[i].seat() == seat {
				claimed = true
				break
			}
		}
		if !claimed {
			return true
		}
	}
	return false
}
