package main

import (
	"context"
	"flag"

	"playsync/lib/env"
	"playsync/lib/messaging/publishing"
	"playsync/lib/messaging/rabbit"
	"playsync/lib/services/sync"
	"playsync/lib/utils/logging"
	"playsync/lib/web/bgg"
)

var logger = logging.NewLogger("SYNCCTL")

// syncctl queues a manual sync request for the configured account.
func main() {
	gameID := flag.Int64("game", 0, "Sync plays for a single game id")
	minDate := flag.String("mindate", "", "Sync plays logged on or after this date (YYYY-MM-DD)")
	maxDate := flag.String("maxdate", "", "Sync plays logged on or before this date (YYYY-MM-DD)")
	scope := flag.Int("scope", int(sync.ScopePlaysDownload), "Scope bitmask to sync")
	flag.Parse()

	rabbit.Wait()
	publishing.Wait()

	ctx := context.Background()
	coordinator := sync.NewCoordinator(env.BGGUsername, bgg.DefaultClient, nil, nil, nil)

	var err error
	switch {
	case *gameID > 0:
		err = coordinator.RequestGameSync(ctx, *gameID)
	case *minDate != "" || *maxDate != "":
		err = coordinator.RequestDateSync(ctx, *minDate, *maxDate)
	default:
		err = coordinator.RequestSync(ctx, sync.Scope(*scope))
	}
	if err != nil {
		logger.Fatal("SYNC_REQUEST_FAILED", err, nil)
	}

	logger.Info("SYNC_REQUESTED", map[string]any{
		logging.ACCOUNT: env.BGGUsername,
		logging.GAME_ID: *gameID,
	})
}
