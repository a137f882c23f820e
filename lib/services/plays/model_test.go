package plays

import (
	"testing"

	"playsync/lib/web/bgg"

	"github.com/stretchr/testify/assert"
)

func TestIsBoardgameSubtype(t *testing.T) {
	tests := []struct {
		name     string
		subtypes []string
		want     bool
	}{
		{"no subtypes", nil, true},
		{"boardgame", []string{"boardgame"}, true},
		{"expansion still prefixed", []string{"boardgameexpansion"}, true},
		{"mixed", []string{"videogame", "boardgame"}, true},
		{"videogame only", []string{"videogame"}, false},
		{"rpg only", []string{"rpgitem"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Play{Subtypes: tt.subtypes}
			assert.Equal(t, tt.want, p.IsBoardgameSubtype())
		})
	}
}

func TestArePlayersCustomSorted(t *testing.T) {
	tests := []struct {
		name      string
		positions []string
		want      bool
	}{
		{"no players", nil, false},
		{"every seat claimed", []string{"1", "2", "3"}, false},
		{"seats claimed out of order", []string{"3", "1", "2"}, false},
		{"gap in seats", []string{"1", "3", "4"}, true},
		{"non-numeric positions", []string{"first", "second"}, true},
		{"blank positions", []string{"", ""}, true},
		{"whitespace tolerated", []string{" 1 ", "2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Play{}
			for _, pos := range tt.positions {
				p.Players = append(p.Players, Player{StartingPosition: pos})
			}
			assert.Equal(t, tt.want, p.ArePlayersCustomSorted())
		})
	}
}

func TestFromResponse(t *testing.T) {
	r := bgg.PlayResponse{
		ID:         77,
		Date:       "2024-01-15",
		Quantity:   2,
		Length:     45,
		Incomplete: 1,
		NoWinStats: 0,
		Location:   "home",
		Comments:   "  great game \n",
		Item: bgg.PlayItem{
			Name:     "Brass",
			ObjectID: 28720,
			Subtypes: []bgg.PlaySubtype{{Value: "boardgame"}},
		},
		Players: []bgg.PlayerResponse{
			{Username: "alice", UserID: 4, Name: "Alice", StartPosition: "1", Win: 1, Rating: 8.5},
		},
	}

	p := FromResponse(&r)
	assert.Equal(t, int64(77), p.PlayID)
	assert.Equal(t, int64(28720), p.GameID)
	assert.Equal(t, "Brass", p.GameName)
	assert.True(t, p.Incomplete)
	assert.False(t, p.NoWinStats)
	assert.Equal(t, "great game", p.Comments)
	assert.Equal(t, []string{"boardgame"}, p.Subtypes)
	assert.Len(t, p.Players, 1)
	assert.True(t, p.Players[0].IsWin)
	assert.Equal(t, 8.5, p.Players[0].Rating)
}

func TestSyncHashCodeDetectsChange(t *testing.T) {
	a := testPlay()
	b := testPlay()
	assert.Equal(t, a.SyncHashCode(), b.SyncHashCode())

	b.Location = "club"
	assert.NotEqual(t, a.SyncHashCode(), b.SyncHashCode())
}

func TestSyncHashCodeIsOrderSensitive(t *testing.T) {
	a := testPlay()
	b := testPlay()
	b.Players[0], b.Players[1] = b.Players[1], b.Players[0]
	assert.NotEqual(t, a.SyncHashCode(), b.SyncHashCode(),
		"a reordered player list registers as a change")
}

func TestSyncHashCodeIgnoresSyncState(t *testing.T) {
	a := testPlay()
	b := testPlay()
	b.SyncTimestamp = 999
	b.UpdateTimestamp = 888
	assert.Equal(t, a.SyncHashCode(), b.SyncHashCode())
}
