package bgg

import (
	"playsync/lib/env"
)

// DefaultClient is the shared client configured from the environment.
var DefaultClient *Client

func init() {
	DefaultClient = NewClient(env.BGGApiBase)
}
