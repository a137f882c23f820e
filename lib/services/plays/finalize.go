package plays

import (
	"context"

	"playsync/lib/store"
)

// noPendingLocalState restricts deletion to rows the user has not touched
// locally since the pass started.
const noPendingLocalState = "update_timestamp = 0 AND delete_timestamp = 0 AND dirty_timestamp = 0"

// DeleteUnupdatedPlaysByGame removes plays for one game that the finished
// pass never touched. A row whose sync timestamp predates the pass start was
// absent from the remote listing and, barring local pending state, is gone.
// Player rows go in the same transaction so a deleted play never strands its
// children.
func (p *Persister) DeleteUnupdatedPlaysByGame(ctx context.Context, gameID int64, startTime int64) (int64, error) {
	stale := "game_id = ? AND sync_timestamp < ? AND " + noPendingLocalState
	results, err := p.store.ApplyBatch(ctx, []store.Operation{
		{
			Type:  store.OpDelete,
			Table: store.TablePlayPlayers,
			Where: "play_id IN (SELECT _id FROM " + store.TablePlays + " WHERE " + stale + ")",
			Args:  []any{gameID, startTime},
		},
		{
			Type:  store.OpDelete,
			Table: store.TablePlays,
			Where: stale,
			Args:  []any{gameID, startTime},
		},
	})
	if err != nil {
		return 0, err
	}
	return results[1].RowsAffected, nil
}

// DeleteUnupdatedPlays removes plays across all games that a full-account
// pass never touched. Same pending-state guard as the per-game variant.
func (p *Persister) DeleteUnupdatedPlays(ctx context.Context, startTime int64) (int64, error) {
	stale := "sync_timestamp < ? AND " + noPendingLocalState
	results, err := p.store.ApplyBatch(ctx, []store.Operation{
		{
			Type:  store.OpDelete,
			Table: store.TablePlayPlayers,
			Where: "play_id IN (SELECT _id FROM " + store.TablePlays + " WHERE " + stale + ")",
			Args:  []any{startTime},
		},
		{
			Type:  store.OpDelete,
			Table: store.TablePlays,
			Where: stale,
			Args:  []any{startTime},
		},
	})
	if err != nil {
		return 0, err
	}
	return results[1].RowsAffected, nil
}

// TouchGameTimestamp records when a game's plays were last fully refreshed.
func (p *Persister) TouchGameTimestamp(ctx context.Context, gameID int64, timestamp int64) error {
	_, err := p.store.ApplyBatch(ctx, []store.Operation{{
		Type:   store.OpUpdate,
		Table:  store.TableGames,
		Values: map[string]any{"updated_plays": timestamp},
		Where:  "game_id = ?",
		Args:   []any{gameID},
	}})
	return err
}
