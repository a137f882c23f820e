package routing

// Queue routing constants for all async processing
const (
	// Sync scheduling queue: one message per requested sync pass
	PlaysSync = "plays_sync"

	// Downstream recompute queue: one message per game whose plays changed
	PlayStats = "play_stats"
)
