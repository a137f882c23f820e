package store

import (
	"context"
	"fmt"
)

// Table names shared by the reconciliation engine and its finalization steps.
const (
	TablePlays       = "plays"
	TablePlayPlayers = "play_players"
	TableGames       = "games"
	TableGameColors  = "game_colors"
	TableBuddies     = "buddies"
)

// sqliteSchema and postgresSchema differ only in the id column flavor.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS plays (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		play_id INTEGER NOT NULL DEFAULT 0,
		date TEXT NOT NULL DEFAULT '',
		game_id INTEGER NOT NULL,
		game_name TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1,
		length INTEGER NOT NULL DEFAULT 0,
		incomplete INTEGER NOT NULL DEFAULT 0,
		no_win_stats INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		start_time INTEGER NOT NULL DEFAULT 0,
		player_count INTEGER NOT NULL DEFAULT 0,
		sync_timestamp INTEGER NOT NULL DEFAULT 0,
		sync_hash_code INTEGER NOT NULL DEFAULT 0,
		delete_timestamp INTEGER NOT NULL DEFAULT 0,
		update_timestamp INTEGER NOT NULL DEFAULT 0,
		dirty_timestamp INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plays_play_id ON plays (play_id)`,
	`CREATE INDEX IF NOT EXISTS idx_plays_game_id ON plays (game_id)`,
	`CREATE TABLE IF NOT EXISTS play_players (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		play_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL DEFAULT 0,
		user_name TEXT,
		name TEXT NOT NULL DEFAULT '',
		start_position TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		score TEXT NOT NULL DEFAULT '',
		is_new INTEGER NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		is_win INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_play_players_play_id ON play_players (play_id)`,
	`CREATE TABLE IF NOT EXISTS games (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL UNIQUE,
		game_name TEXT NOT NULL DEFAULT '',
		custom_player_sort INTEGER NOT NULL DEFAULT 0,
		updated_plays INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS game_colors (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL,
		color TEXT NOT NULL,
		UNIQUE (game_id, color)
	)`,
	`CREATE TABLE IF NOT EXISTS buddies (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		buddy_name TEXT NOT NULL UNIQUE,
		play_nickname TEXT NOT NULL DEFAULT ''
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS plays (
		_id BIGSERIAL PRIMARY KEY,
		play_id BIGINT NOT NULL DEFAULT 0,
		date TEXT NOT NULL DEFAULT '',
		game_id BIGINT NOT NULL,
		game_name TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1,
		length INTEGER NOT NULL DEFAULT 0,
		incomplete INTEGER NOT NULL DEFAULT 0,
		no_win_stats INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		start_time BIGINT NOT NULL DEFAULT 0,
		player_count INTEGER NOT NULL DEFAULT 0,
		sync_timestamp BIGINT NOT NULL DEFAULT 0,
		sync_hash_code BIGINT NOT NULL DEFAULT 0,
		delete_timestamp BIGINT NOT NULL DEFAULT 0,
		update_timestamp BIGINT NOT NULL DEFAULT 0,
		dirty_timestamp BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plays_play_id ON plays (play_id)`,
	`CREATE INDEX IF NOT EXISTS idx_plays_game_id ON plays (game_id)`,
	`CREATE TABLE IF NOT EXISTS play_players (
		_id BIGSERIAL PRIMARY KEY,
		play_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL DEFAULT 0,
		user_name TEXT,
		name TEXT NOT NULL DEFAULT '',
		start_position TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		score TEXT NOT NULL DEFAULT '',
		is_new INTEGER NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_win INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_play_players_play_id ON play_players (play_id)`,
	`CREATE TABLE IF NOT EXISTS games (
		_id BIGSERIAL PRIMARY KEY,
		game_id BIGINT NOT NULL UNIQUE,
		game_name TEXT NOT NULL DEFAULT '',
		custom_player_sort INTEGER NOT NULL DEFAULT 0,
		updated_plays BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS game_colors (
		_id BIGSERIAL PRIMARY KEY,
		game_id BIGINT NOT NULL,
		color TEXT NOT NULL,
		UNIQUE (game_id, color)
	)`,
	`CREATE TABLE IF NOT EXISTS buddies (
		_id BIGSERIAL PRIMARY KEY,
		buddy_name TEXT NOT NULL UNIQUE,
		play_nickname TEXT NOT NULL DEFAULT ''
	)`,
}

// InitSchema creates the store tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
