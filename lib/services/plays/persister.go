package plays

import (
	"context"

	"playsync/lib/store"
	"playsync/lib/utils/logging"
)

var logger = logging.NewLogger("PLAY_PERSISTER")

// Persister reconciles remote play records into the local store. Every call
// computes the minimal set of batched mutations and applies them atomically;
// a partial failure leaves the store untouched.
type Persister struct {
	store store.Executor
}

func NewPersister(st store.Executor) *Persister {
	return &Persister{store: st}
}

// Save reconciles one remote play against the local store. rowID is the
// existing local row for this play, or store.InvalidID when none is known.
// It returns the resulting row identifier: the pre-existing rowID for an
// update, the store-assigned id for an insert, or store.InvalidID when the
// play was rejected or skipped.
func (p *Persister) Save(ctx context.Context, play *Play, rowID int64, includePlayers bool) (int64, error) {
	if play == nil {
		return store.InvalidID, nil
	}
	if !play.IsBoardgameSubtype() {
		return store.InvalidID, nil
	}

	var batch []store.Operation
	values := playValues(play)

	if rowID != store.InvalidID {
		batch = append(batch, store.Operation{
			Type:   store.OpUpdate,
			Table:  store.TablePlays,
			Values: values,
			Where:  "_id = ?",
			Args:   []any{rowID},
		})
	} else if play.DeleteTimestamp > 0 {
		// Local delete intent takes precedence over remote presence.
		logger.Info("SKIPPING_DELETED_PLAY", map[string]any{
			logging.PLAY_ID: play.PlayID,
		})
		return store.InvalidID, nil
	} else {
		batch = append(batch, store.Operation{
			Type:   store.OpInsert,
			Table:  store.TablePlays,
			Values: values,
		})
	}

	if includePlayers {
		batch = p.deletePlayersWithEmptyUsername(batch, rowID)

		existing, err := p.collapseDuplicateUsernames(ctx, &batch, rowID)
		if err != nil {
			return store.InvalidID, err
		}
		var unmatched []string
		batch, unmatched = addPlayersToBatch(batch, play, existing, rowID)
		batch = removeUnusedPlayers(batch, rowID, unmatched)

		// Only an authoritative remote record updates derived state; a local
		// placeholder has neither a remote identity nor an update timestamp.
		if play.PlayID > 0 || play.UpdateTimestamp > 0 {
			batch, err = p.saveGamePlayerSortOrder(ctx, batch, play)
			if err != nil {
				return store.InvalidID, err
			}
			batch, err = p.updateGameColors(ctx, batch, play)
			if err != nil {
				return store.InvalidID, err
			}
			batch = saveBuddyNicknames(batch, play)
		}
	}

	results, err := p.store.ApplyBatch(ctx, batch)
	if err != nil {
		return store.InvalidID, err
	}

	insertedID := rowID
	if insertedID == store.InvalidID && len(results) > 0 {
		insertedID = results[0].RowID
	}
	logger.Debug("PLAY_SAVED", map[string]any{
		logging.PLAY_ID: play.PlayID,
		logging.ROW_ID:  insertedID,
	})
	return insertedID, nil
}

// SaveAll reconciles one page of remote plays, marking every touched row with
// the pass start timestamp. Rows carrying local pending state (delete, dirty,
// or update timestamps) are left alone so local intent survives the remote
// overwrite. Returns the number of plays written.
func (p *Persister) SaveAll(ctx context.Context, page []Play, startTime int64) (int, error) {
	saved := 0
	for i := range page {
		play := &page[i]
		play.SyncTimestamp = startTime

		rowID := store.InvalidID
		if play.PlayID > 0 {
			row, found, err := p.store.QueryInt64Row(ctx, store.TablePlays,
				[]string{"_id", "delete_timestamp", "dirty_timestamp", "update_timestamp", "sync_hash_code"},
				"play_id = ?", play.PlayID)
			if err != nil {
				return saved, err
			}
			if found {
				if row["delete_timestamp"] > 0 || row["dirty_timestamp"] > 0 || row["update_timestamp"] > 0 {
					logger.Debug("SKIPPING_PLAY_WITH_PENDING_STATE", map[string]any{
						logging.PLAY_ID: play.PlayID,
					})
					continue
				}
				rowID = row["_id"]
				if row["sync_hash_code"] == play.SyncHashCode() {
					// Content unchanged; just confirm the sync.
					_, err := p.store.ApplyBatch(ctx, []store.Operation{{
						Type:   store.OpUpdate,
						Table:  store.TablePlays,
						Values: map[string]any{"sync_timestamp": startTime},
						Where:  "_id = ?",
						Args:   []any{rowID},
					}})
					if err != nil {
						return saved, err
					}
					saved++
					continue
				}
			}
		}

		if _, err := p.Save(ctx, play, rowID, true); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

func playValues(play *Play) map[string]any {
	startTime := play.StartTime
	if play.Length > 0 {
		// Only store a start time when there's no length.
		startTime = 0
	}
	return map[string]any{
		"play_id":          play.PlayID,
		"date":             play.Date,
		"game_id":          play.GameID,
		"game_name":        play.GameName,
		"quantity":         play.Quantity,
		"length":           play.Length,
		"incomplete":       boolToInt(play.Incomplete),
		"no_win_stats":     boolToInt(play.NoWinStats),
		"location":         play.Location,
		"comments":         play.Comments,
		"start_time":       startTime,
		"player_count":     play.PlayerCount(),
		"sync_timestamp":   play.SyncTimestamp,
		"sync_hash_code":   play.SyncHashCode(),
		"delete_timestamp": play.DeleteTimestamp,
		"update_timestamp": play.UpdateTimestamp,
		"dirty_timestamp":  play.DirtyTimestamp,
	}
}

func playerValues(pl *Player) map[string]any {
	return map[string]any{
		"user_id":        pl.UserID,
		"user_name":      pl.Username,
		"name":           pl.Name,
		"start_position": pl.StartingPosition,
		"color":          pl.Color,
		"score":          pl.Score,
		"is_new":         boolToInt(pl.IsNew),
		"rating":         pl.Rating,
		"is_win":         boolToInt(pl.IsWin),
	}
}

// deletePlayersWithEmptyUsername queues defensive cleanup of malformed prior
// state: player rows without a username cannot be matched and are recreated.
func (p *Persister) deletePlayersWithEmptyUsername(batch []store.Operation, rowID int64) []store.Operation {
	if rowID == store.InvalidID {
		return batch
	}
	return append(batch, store.Operation{
		Type:  store.OpDelete,
		Table: store.TablePlayPlayers,
		Where: "play_id = ? AND (user_name IS NULL OR user_name = '')",
		Args:  []any{rowID},
	})
}

// collapseDuplicateUsernames reads the existing player usernames for the play
// row and queues deletion of duplicates, keeping one surviving row per
// username. The returned set is the "existing username" set used for matching.
func (p *Persister) collapseDuplicateUsernames(ctx context.Context, batch *[]store.Operation, rowID int64) ([]string, error) {
	if rowID == store.InvalidID {
		return nil, nil
	}
	usernames, err := p.store.QueryStrings(ctx, store.TablePlayPlayers, "user_name", "play_id = ?", rowID)
	if err != nil {
		return nil, err
	}
	if len(usernames) == 0 {
		return nil, nil
	}

	var unique []string
	var toDelete []string
	for _, username := range usernames {
		if username == "" {
			continue
		}
		if containsString(unique, username) {
			toDelete = append(toDelete, username)
		} else {
			unique = append(unique, username)
		}
	}

	for _, username := range toDelete {
		*batch = append(*batch, store.Operation{
			Type:  store.OpDelete,
			Table: store.TablePlayPlayers,
			Where: "play_id = ? AND user_name = ?",
			Args:  []any{rowID, username},
		})
		unique = removeString(unique, username)
	}
	return unique, nil
}

// collapseIncomingPlayers folds duplicate usernames within one incoming list:
// the first occurrence keeps its position, the last occurrence supplies the
// attributes. Guests (empty username) are never collapsed.
func collapseIncomingPlayers(players []Player) []Player {
	out := make([]Player, 0, len(players))
	index := make(map[string]int)
	for _, pl := range players {
		if pl.Username == "" {
			out = append(out, pl)
			continue
		}
		if i, seen := index[pl.Username]; seen {
			out[i] = pl
			continue
		}
		index[pl.Username] = len(out)
		out = append(out, pl)
	}
	return out
}

// addPlayersToBatch queues an update for every incoming player whose username
// matches a surviving existing row, and an insert otherwise. Inserts for a
// freshly inserted play back-reference the play operation's not-yet-known
// row id (operation 0 of the batch). Returns the existing usernames no
// incoming player matched.
func addPlayersToBatch(batch []store.Operation, play *Play, existing []string, rowID int64) ([]store.Operation, []string) {
	for _, pl := range collapseIncomingPlayers(play.Players) {
		values := playerValues(&pl)
		if containsString(existing, pl.Username) {
			batch = append(batch, store.Operation{
				Type:   store.OpUpdate,
				Table:  store.TablePlayPlayers,
				Values: values,
				Where:  "play_id = ? AND user_name = ?",
				Args:   []any{rowID, pl.Username},
			})
			existing = removeString(existing, pl.Username)
		} else if rowID == store.InvalidID {
			batch = append(batch, store.Operation{
				Type:     store.OpInsert,
				Table:    store.TablePlayPlayers,
				Values:   values,
				BackRefs: map[string]int{"play_id": 0},
			})
		} else {
			values["play_id"] = rowID
			batch = append(batch, store.Operation{
				Type:   store.OpInsert,
				Table:  store.TablePlayPlayers,
				Values: values,
			})
		}
	}
	return batch, existing
}

// removeUnusedPlayers queues deletion of every existing username no incoming
// player matched; those players were removed on the remote side.
func removeUnusedPlayers(batch []store.Operation, rowID int64, existing []string) []store.Operation {
	if rowID == store.InvalidID {
		return batch
	}
	for _, username := range existing {
		batch = append(batch, store.Operation{
			Type:  store.OpDelete,
			Table: store.TablePlayPlayers,
			Where: "play_id = ? AND user_name = ?",
			Args:  []any{rowID, username},
		})
	}
	return batch
}

// saveGamePlayerSortOrder queues an update of the per-game custom sort flag.
// Skipped when the play has no players or the game was never stored locally.
func (p *Persister) saveGamePlayerSortOrder(ctx context.Context, batch []store.Operation, play *Play) ([]store.Operation, error) {
	if play.PlayerCount() == 0 {
		return batch, nil
	}
	exists, err := p.store.RowExists(ctx, store.TableGames, "game_id = ?", play.GameID)
	if err != nil {
		return batch, err
	}
	if !exists {
		return batch, nil
	}
	return append(batch, store.Operation{
		Type:   store.OpUpdate,
		Table:  store.TableGames,
		Values: map[string]any{"custom_player_sort": boolToInt(play.ArePlayersCustomSorted())},
		Where:  "game_id = ?",
		Args:   []any{play.GameID},
	}), nil
}

// updateGameColors queues insertion of any player colors not already present
// in the game's color registry. Exact string match; first seen wins.
func (p *Persister) updateGameColors(ctx context.Context, batch []store.Operation, play *Play) ([]store.Operation, error) {
	if play.PlayerCount() == 0 {
		return batch, nil
	}
	exists, err := p.store.RowExists(ctx, store.TableGames, "game_id = ?", play.GameID)
	if err != nil {
		return batch, err
	}
	if !exists {
		return batch, nil
	}

	var queued []string
	for i := range play.Players {
		color := play.Players[i].Color
		if color == "" || containsString(queued, color) {
			continue
		}
		stored, err := p.store.RowExists(ctx, store.TableGameColors, "game_id = ? AND color = ?", play.GameID, color)
		if err != nil {
			return batch, err
		}
		if stored {
			continue
		}
		batch = append(batch, store.Operation{
			Type:   store.OpInsert,
			Table:  store.TableGameColors,
			Values: map[string]any{"game_id": play.GameID, "color": color},
		})
		queued = append(queued, color)
	}
	return batch, nil
}

// saveBuddyNicknames propagates each (username, display name) pair into the
// nickname registry.
func saveBuddyNicknames(batch []store.Operation, play *Play) []store.Operation {
	if play.PlayerCount() == 0 {
		return batch
	}
	for i := range play.Players {
		pl := &play.Players[i]
		if pl.Username == "" || pl.Name == "" {
			continue
		}
		batch = append(batch, store.Operation{
			Type:   store.OpUpdate,
			Table:  store.TableBuddies,
			Values: map[string]any{"play_nickname": pl.Name},
			Where:  "buddy_name = ?",
			Args:   []any{pl.Username},
		})
	}
	return batch
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
