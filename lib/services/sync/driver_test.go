package sync

import (
	"context"
	"errors"
	"testing"

	"playsync/lib/web/bgg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePages builds a driver over a canned page sequence, recording the pages
// persisted and whether finalize ran.
type fakePages struct {
	pages     []*bgg.PlaysResponse
	persisted []int
	finalized bool

	onPersist func(page int)
}

func (f *fakePages) driver() *Driver[bgg.PlaysResponse] {
	return &Driver[bgg.PlaysResponse]{
		Resource: "plays_test",
		Key:      "test",
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &bgg.HttpResult[bgg.PlaysResponse]{
				Success:    true,
				Data:       f.pages[page-1],
				StatusCode: 200,
			}, nil
		},
		Persist: func(ctx context.Context, body *bgg.PlaysResponse) error {
			f.persisted = append(f.persisted, body.Page)
			if f.onPersist != nil {
				f.onPersist(body.Page)
			}
			return nil
		},
		HasMore: func(body *bgg.PlaysResponse) bool {
			return body.HasMorePages()
		},
		Finalize: func(ctx context.Context) error {
			f.finalized = true
			return nil
		},
	}
}

func threePages() []*bgg.PlaysResponse {
	// Pages 1 and 2 report more pages; page 3 is the last.
	return []*bgg.PlaysResponse{
		{Username: "alice", Total: 250, Page: 1},
		{Username: "alice", Total: 250, Page: 2},
		{Username: "alice", Total: 250, Page: 3},
	}
}

func TestDriverPaginationTermination(t *testing.T) {
	f := &fakePages{pages: threePages()}

	outcome := f.driver().Run(context.Background())

	assert.True(t, outcome.Success())
	assert.Equal(t, 3, outcome.Pages)
	assert.Equal(t, []int{1, 2, 3}, f.persisted, "each page persisted exactly once, in order")
	assert.True(t, f.finalized)
}

func TestDriverTransportErrorMessage(t *testing.T) {
	f := &fakePages{pages: threePages()}
	d := f.driver()
	d.Fetch = func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
		return nil, errors.New("dial tcp 127.0.0.1:443: connection refused")
	}

	outcome := d.Run(context.Background())

	assert.False(t, outcome.Success())
	assert.False(t, outcome.Cancelled)
	assert.Equal(t, "Could not reach the remote service.", outcome.Message)
	assert.Empty(t, f.persisted)
}

func TestDriverCancellationMidPagination(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakePages{pages: threePages()}
	f.onPersist = func(page int) {
		if page == 1 {
			cancel()
		}
	}

	outcome := f.driver().Run(ctx)

	assert.True(t, outcome.Cancelled)
	assert.Empty(t, outcome.Message, "cancellation is not an error")
	assert.Equal(t, []int{1}, f.persisted, "pages after the cancellation are never fetched")
	assert.False(t, f.finalized, "finalization is skipped on cancellation")
}

func TestDriverInvalidParams(t *testing.T) {
	fetched := false
	d := &Driver[bgg.PlaysResponse]{
		Resource:             "plays_test",
		IsRequestParamsValid: func() bool { return false },
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			fetched = true
			return nil, nil
		},
	}

	outcome := d.Run(context.Background())

	assert.Equal(t, "Invalid request parameters.", outcome.Message)
	assert.False(t, fetched, "preconditions fail before any network call")
}

func TestDriverOffline(t *testing.T) {
	d := &Driver[bgg.PlaysResponse]{
		Resource: "plays_test",
		Online:   func() bool { return false },
	}
	outcome := d.Run(context.Background())
	assert.Equal(t, "Device is offline.", outcome.Message)
}

func TestDriverSyncDisabled(t *testing.T) {
	d := &Driver[bgg.PlaysResponse]{
		Resource:    "plays_test",
		SyncEnabled: func() bool { return false },
	}
	outcome := d.Run(context.Background())
	assert.Equal(t, "Remote sync is disabled.", outcome.Message)
}

func TestDriverHTTPFailure(t *testing.T) {
	d := &Driver[bgg.PlaysResponse]{
		Resource: "plays_test",
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			return &bgg.HttpResult[bgg.PlaysResponse]{Success: false, StatusCode: 503}, nil
		},
	}
	outcome := d.Run(context.Background())
	assert.Equal(t, "The remote service is unavailable.", outcome.Message)
	assert.False(t, outcome.Cancelled)
}

func TestDriverInvalidBody(t *testing.T) {
	persisted := false
	d := &Driver[bgg.PlaysResponse]{
		Resource: "plays_test",
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			return &bgg.HttpResult[bgg.PlaysResponse]{Success: true, Data: &bgg.PlaysResponse{}, StatusCode: 200}, nil
		},
		ValidateBody: func(body *bgg.PlaysResponse) bool { return false },
		Persist: func(ctx context.Context, body *bgg.PlaysResponse) error {
			persisted = true
			return nil
		},
	}
	outcome := d.Run(context.Background())
	assert.Equal(t, "Invalid response.", outcome.Message)
	assert.False(t, persisted)
}

func TestDriverPersistFailureStopsPass(t *testing.T) {
	f := &fakePages{pages: threePages()}
	d := f.driver()
	d.Persist = func(ctx context.Context, body *bgg.PlaysResponse) error {
		return errors.New("disk full")
	}

	outcome := d.Run(context.Background())

	assert.Equal(t, "disk full", outcome.Message)
	assert.Equal(t, 0, outcome.Pages)
	assert.False(t, f.finalized)
}

func TestDriverFinalizeFailure(t *testing.T) {
	f := &fakePages{pages: threePages()}
	d := f.driver()
	d.Finalize = func(ctx context.Context) error {
		return errors.New("finalize failed")
	}

	outcome := d.Run(context.Background())

	require.Equal(t, []int{1, 2, 3}, f.persisted)
	assert.Equal(t, "finalize failed", outcome.Message)
	assert.Equal(t, 3, outcome.Pages)
}

func TestOutcomeStatus(t *testing.T) {
	assert.Equal(t, "success", Outcome{}.Status())
	assert.Equal(t, "failure", Outcome{Message: "boom"}.Status())
	assert.Equal(t, "cancelled", Outcome{Cancelled: true}.Status())
}

func TestHTTPErrorMessages(t *testing.T) {
	assert.Equal(t, "The remote service is throttling requests.", httpErrorMessage(429))
	assert.Equal(t, "The requested resource does not exist remotely.", httpErrorMessage(404))
	assert.Equal(t, "Unexpected response status 418.", httpErrorMessage(418))
}
