package postgres

import (
	"database/sql"
	"fmt"

	"playsync/lib/env"
	"playsync/lib/utils/singleton"

	_ "github.com/lib/pq"
)

var (
	DB       *sql.DB
	initDone <-chan struct{}
)

func init() {
	initDone = singleton.InitAsync("POSTGRES", 10, func() error {
		connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
			env.PostgresHost, env.PostgresPort, env.PostgresUser, env.PostgresDB, env.PostgresPassword)
		db, err := sql.Open("postgres", connStr)
		if err != nil {
			return err
		}
		DB = db
		return nil
	})
}

// Wait blocks until PostgreSQL initialization is complete
func Wait() {
	<-initDone
}
