package logging

// Standard logging field keys - use constants to ensure consistency
const (
	// Core fields
	ACTION = "action"
	COUNT  = "count"
	KEY    = "key"
	NAME   = "name"
	PATH   = "path"
	REASON = "reason"
	STATUS = "status"
	TYPE   = "type"
	VALUE  = "value"

	// Infrastructure fields
	HOST    = "host"
	PORT    = "port"
	QUEUE   = "queue"
	SERVICE = "service"

	// Network/HTTP fields
	ENDPOINT    = "endpoint"
	STATUS_CODE = "status_code"

	// Store fields
	ATTEMPT    = "attempt"
	ATTEMPTS   = "attempts"
	OPERATION  = "operation"
	OPERATIONS = "operations"
	RETRIES    = "retries"
	ROW_ID     = "row_id"
	TABLE      = "table"

	// Sync/domain fields
	ACCOUNT  = "account"
	GAME_ID  = "game_id"
	PAGE     = "page"
	PAGES    = "pages"
	PASS_ID  = "pass_id"
	PLAY_ID  = "play_id"
	PLAYERS  = "players"
	RESOURCE = "resource"
	SCOPE    = "scope"
	USERNAME = "username"

	// Timing fields
	DURATION = "duration"
)
