package sqlite

import (
	"database/sql"

	"playsync/lib/env"
	"playsync/lib/utils/singleton"

	_ "github.com/mattn/go-sqlite3"
)

var (
	DB       *sql.DB
	initDone <-chan struct{}
)

func init() {
	initDone = singleton.InitAsync("SQLITE", 3, func() error {
		db, err := sql.Open("sqlite3", env.SqlitePath+"?_foreign_keys=on&_journal_mode=WAL")
		if err != nil {
			return err
		}
		// SQLite allows a single writer; serialize access through one connection.
		db.SetMaxOpenConns(1)
		DB = db
		return nil
	})
}

// Wait blocks until SQLite initialization is complete
func Wait() {
	<-initDone
}
