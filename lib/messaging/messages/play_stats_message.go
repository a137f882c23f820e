package messages

// PlayStatsRequest asks the downstream stats consumer to recompute play
// statistics for one game after its plays changed.
type PlayStatsRequest struct {
	Account string `json:"account"`
	GameID  int64  `json:"game_id"`
}
