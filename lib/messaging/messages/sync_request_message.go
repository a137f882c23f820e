package messages

// SyncRequest is the payload published to the plays_sync queue: one message
// per requested sync pass. PassID correlates the request with its audit log
// entry and completion event. IssuedAt (unix nanos) lets the consumer drop
// requests that were queued before a cancellation.
type SyncRequest struct {
	PassID   string `json:"pass_id"`
	Account  string `json:"account"`
	Scope    int    `json:"scope"`
	GameID   int64  `json:"game_id,omitempty"`
	MinDate  string `json:"min_date,omitempty"`
	MaxDate  string `json:"max_date,omitempty"`
	IssuedAt int64  `json:"issued_at,omitempty"`
}
