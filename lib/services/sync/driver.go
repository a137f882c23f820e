package sync

import (
	"context"

	"playsync/lib/monitoring"
	"playsync/lib/utils/logging"
	"playsync/lib/utils/network"
	"playsync/lib/web/bgg"
)

var logger = logging.NewLogger("SYNC")

// Outcome is the terminal result of one sync pass. An empty Message with
// Cancelled false denotes success.
type Outcome struct {
	Message   string
	Cancelled bool
	Pages     int
}

func (o Outcome) Success() bool {
	return o.Message == "" && !o.Cancelled
}

func (o Outcome) Status() string {
	switch {
	case o.Cancelled:
		return "cancelled"
	case o.Message != "":
		return "failure"
	default:
		return "success"
	}
}

// Driver fetches every page of one remote resource and feeds each page to a
// persistence hook. Hooks left nil are skipped (gates pass, finalization is
// a no-op). Cancellation is cooperative: the context aborts the in-flight
// HTTP call, and the flag is polled after each page's persistence, so a
// committed page is never silently dropped mid-loop.
type Driver[T any] struct {
	// Resource labels logs and metrics (e.g. "plays_by_game").
	Resource string
	// Key identifies the synced resource for completion correlation.
	Key string

	IsRequestParamsValid func() bool
	Online               func() bool
	SyncEnabled          func() bool

	Fetch        func(ctx context.Context, page int) (*bgg.HttpResult[T], error)
	ValidateBody func(body *T) bool
	Persist      func(ctx context.Context, body *T) error
	HasMore      func(body *T) bool
	Finalize     func(ctx context.Context) error
}

// Run executes the pass. Preconditions fail fast without a network call;
// a cancelled pass keeps its committed pages and skips finalization.
func (d *Driver[T]) Run(ctx context.Context) Outcome {
	if d.IsRequestParamsValid != nil && !d.IsRequestParamsValid() {
		return d.fail(0, "Invalid request parameters.")
	}
	if d.Online != nil && !d.Online() {
		return d.fail(0, "Device is offline.")
	}
	if d.SyncEnabled != nil && !d.SyncEnabled() {
		return d.fail(0, "Remote sync is disabled.")
	}

	pages := 0
	for page := 1; ; page++ {
		res, err := d.Fetch(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{Cancelled: true, Pages: pages}
			}
			return d.fail(pages, fetchErrorMessage(d.Resource, page, err))
		}
		if !res.Success {
			return d.fail(pages, httpErrorMessage(res.StatusCode))
		}
		if res.Data == nil || (d.ValidateBody != nil && !d.ValidateBody(res.Data)) {
			return d.fail(pages, "Invalid response.")
		}

		if err := d.Persist(ctx, res.Data); err != nil {
			logger.Error("PAGE_PERSIST_ERROR", err, map[string]any{
				logging.RESOURCE: d.Resource,
				logging.PAGE:     page,
			})
			return d.fail(pages, err.Error())
		}
		pages++
		monitoring.PagesFetched.WithLabelValues(d.Resource).Inc()
		logger.Debug("PAGE_PERSISTED", map[string]any{
			logging.RESOURCE: d.Resource,
			logging.PAGE:     page,
		})

		// Checked strictly after persistence: a fetched page is either fully
		// committed or never observed.
		if ctx.Err() != nil {
			return Outcome{Cancelled: true, Pages: pages}
		}
		if d.HasMore == nil || !d.HasMore(res.Data) {
			break
		}
	}

	if d.Finalize != nil {
		if err := d.Finalize(ctx); err != nil {
			logger.Error("FINALIZE_ERROR", err, map[string]any{
				logging.RESOURCE: d.Resource,
			})
			return d.fail(pages, err.Error())
		}
	}
	return Outcome{Pages: pages}
}

// fetchErrorMessage logs a failed page fetch at a severity matching its
// network classification and returns the message to surface.
func fetchErrorMessage(resource string, page int, err error) string {
	fields := map[string]any{
		logging.RESOURCE: resource,
		logging.PAGE:     page,
	}
	kind := network.Classify(err)
	switch kind {
	case network.KindTimeout:
		logger.Warn("PAGE_FETCH_TIMEOUT", err, fields)
	case network.KindConnection:
		logger.Warn("PAGE_FETCH_NETWORK_ERROR", err, fields)
	default:
		logger.Error("PAGE_FETCH_ERROR", err, fields)
	}
	if msg := network.Message(kind); msg != "" {
		return msg
	}
	return err.Error()
}

func (d *Driver[T]) fail(pages int, message string) Outcome {
	logger.Warn("SYNC_PASS_FAILED", nil, map[string]any{
		logging.RESOURCE: d.Resource,
		logging.KEY:      d.Key,
		"message":        message,
	})
	return Outcome{Message: message, Pages: pages}
}
