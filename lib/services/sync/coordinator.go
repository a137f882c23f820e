package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"playsync/lib/messaging/messages"
	"playsync/lib/messaging/publishing"
	"playsync/lib/messaging/routing"
	"playsync/lib/monitoring"
	"playsync/lib/prefs"
	"playsync/lib/services/passlog"
	"playsync/lib/services/plays"
	"playsync/lib/utils/logging"
	"playsync/lib/web/bgg"

	"github.com/google/uuid"
)

var coordLogger = logging.NewLogger("SYNC_COORDINATOR")

// CompletionEvent is delivered to the registered listener once per
// terminated pass. An empty Message with Cancelled false denotes success.
type CompletionEvent struct {
	PassID    string
	Account   string
	Resource  string
	Key       string
	Message   string
	Cancelled bool
	Pages     int
}

// Coordinator exposes the named sync scopes as independently triggerable,
// independently cancellable units. Requests are handed to the scheduling
// queue; execution happens on the queue's workers, with at most one active
// pass per resource key tracked in an in-flight registry.
type Coordinator struct {
	account   string
	client    *bgg.Client
	persister *plays.Persister
	prefs     *prefs.Store
	online    func() bool
	audit     *passlog.Recorder
	listener  func(CompletionEvent)

	publishSync  func(ctx context.Context, req messages.SyncRequest) error
	publishStats func(ctx context.Context, req messages.PlayStatsRequest) error

	mu          sync.Mutex
	pending     int
	inflight    map[string]context.CancelFunc
	cancelledAt int64 // unix nanos of the last CancelSync
}

func NewCoordinator(account string, client *bgg.Client, persister *plays.Persister, prefStore *prefs.Store, online func() bool) *Coordinator {
	return &Coordinator{
		account:   account,
		client:    client,
		persister: persister,
		prefs:     prefStore,
		online:    online,
		publishSync: func(ctx context.Context, req messages.SyncRequest) error {
			return publishing.PublishJSONMessage(ctx, routing.PlaysSync, req)
		},
		publishStats: func(ctx context.Context, req messages.PlayStatsRequest) error {
			return publishing.PublishJSONMessage(ctx, routing.PlayStats, req)
		},
		inflight: make(map[string]context.CancelFunc),
	}
}

// SetAuditRecorder enables best-effort pass audit logging.
func (c *Coordinator) SetAuditRecorder(r *passlog.Recorder) {
	c.audit = r
}

// SetListener registers the completion listener. Must be called before the
// queue workers start.
func (c *Coordinator) SetListener(fn func(CompletionEvent)) {
	c.listener = fn
}

// RequestSync queues a manual, immediate sync of the given scope. A no-op
// when no account is configured.
func (c *Coordinator) RequestSync(ctx context.Context, scope Scope) error {
	return c.request(ctx, messages.SyncRequest{Scope: int(scope)})
}

// RequestGameSync queues a plays sync scoped to one game.
func (c *Coordinator) RequestGameSync(ctx context.Context, gameID int64) error {
	return c.request(ctx, messages.SyncRequest{Scope: int(ScopePlaysDownload), GameID: gameID})
}

// RequestDateSync queues a plays sync scoped to a date window (inclusive,
// YYYY-MM-DD).
func (c *Coordinator) RequestDateSync(ctx context.Context, minDate, maxDate string) error {
	return c.request(ctx, messages.SyncRequest{Scope: int(ScopePlaysDownload), MinDate: minDate, MaxDate: maxDate})
}

func (c *Coordinator) request(ctx context.Context, req messages.SyncRequest) error {
	if c.account == "" {
		coordLogger.Info("NO_ACCOUNT_CONFIGURED", nil)
		return nil
	}
	req.PassID = uuid.NewString()
	req.Account = c.account
	req.IssuedAt = time.Now().UnixNano()

	if err := c.publishSync(ctx, req); err != nil {
		coordLogger.Error("SYNC_REQUEST_PUBLISH_ERROR", err, map[string]any{
			logging.SCOPE: req.Scope,
		})
		return err
	}

	c.mu.Lock()
	c.pending++
	c.mu.Unlock()

	coordLogger.Info("SYNC_REQUESTED", map[string]any{
		logging.PASS_ID: req.PassID,
		logging.SCOPE:   Scope(req.Scope).String(),
		logging.GAME_ID: req.GameID,
	})
	return nil
}

// CancelSync cancels every in-flight pass for the configured account, drops
// every request still waiting on the queue, and logs the human-readable
// reason. The in-progress indicator reaches zero as the cancelled passes
// drain; queued requests are discarded when the worker consumes them.
func (c *Coordinator) CancelSync(reason string) {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.inflight))
	for _, cancel := range c.inflight {
		cancels = append(cancels, cancel)
	}
	count := len(cancels) + c.pending
	c.pending = 0
	c.cancelledAt = time.Now().UnixNano()
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	coordLogger.Info("SYNC_CANCELLED", map[string]any{
		logging.ACCOUNT: c.account,
		logging.REASON:  reason,
		logging.COUNT:   count,
	})
}

// IsActiveOrPending reports whether a sync is currently running or queued
// for the configured account. Always false without an account.
func (c *Coordinator) IsActiveOrPending() bool {
	if c.account == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight) > 0 || c.pending > 0
}

// Run executes one queued sync request. Called from the scheduling queue's
// worker; runs every pass the scope mask selects, in order. Requests issued
// before the last CancelSync are consumed and discarded.
func (c *Coordinator) Run(ctx context.Context, req messages.SyncRequest) {
	c.mu.Lock()
	if c.pending > 0 {
		c.pending--
	}
	dropped := req.IssuedAt != 0 && req.IssuedAt <= c.cancelledAt
	c.mu.Unlock()

	if dropped {
		coordLogger.Info("SYNC_REQUEST_DROPPED", map[string]any{
			logging.PASS_ID: req.PassID,
			logging.SCOPE:   Scope(req.Scope).String(),
		})
		return
	}

	if req.Account != c.account {
		coordLogger.Warn("SYNC_REQUEST_ACCOUNT_MISMATCH", nil, map[string]any{
			logging.ACCOUNT: req.Account,
		})
		return
	}

	scope := Scope(req.Scope)
	if scope.Has(ScopePlaysDownload) {
		c.runPlaysDownload(ctx, req)
	}
	for _, unsupported := range []Scope{ScopeCollectionDownload, ScopeCollectionUpload, ScopeBuddies, ScopePlaysUpload, ScopeGames} {
		if scope.Has(unsupported) {
			coordLogger.Info("SCOPE_NOT_SUPPORTED", map[string]any{
				logging.PASS_ID: req.PassID,
				logging.SCOPE:   unsupported.String(),
			})
		}
	}
}

func (c *Coordinator) runPlaysDownload(ctx context.Context, req messages.SyncRequest) {
	startTime := time.Now().UnixMilli()

	var driver *Driver[bgg.PlaysResponse]
	switch {
	case req.GameID > 0:
		driver = c.playsByGamePass(req.GameID, startTime)
	case req.MinDate != "" || req.MaxDate != "":
		driver = c.playsByDatePass(req.MinDate, req.MaxDate, startTime)
	default:
		driver = c.playsPass(startTime)
	}
	c.runPass(ctx, req.PassID, driver)
}

// runPass executes one driver while it is registered in the in-flight
// registry. Rejects a second concurrent pass for the same resource key.
func (c *Coordinator) runPass(ctx context.Context, passID string, d *Driver[bgg.PlaysResponse]) Outcome {
	passCtx, cancel := context.WithCancel(ctx)
	registryKey := d.Resource + ":" + d.Key

	c.mu.Lock()
	if _, exists := c.inflight[registryKey]; exists {
		c.mu.Unlock()
		cancel()
		coordLogger.Warn("SYNC_PASS_ALREADY_ACTIVE", nil, map[string]any{
			logging.PASS_ID:  passID,
			logging.RESOURCE: d.Resource,
		})
		return Outcome{Message: "A sync for this resource is already in progress."}
	}
	c.inflight[registryKey] = cancel
	monitoring.SyncInProgress.WithLabelValues(c.account).Set(float64(len(c.inflight)))
	c.mu.Unlock()

	startedAt := time.Now()
	outcome := d.Run(passCtx)
	duration := time.Since(startedAt)

	c.mu.Lock()
	delete(c.inflight, registryKey)
	monitoring.SyncInProgress.WithLabelValues(c.account).Set(float64(len(c.inflight)))
	c.mu.Unlock()
	cancel()

	monitoring.PassStatus.WithLabelValues(d.Resource, outcome.Status()).Inc()
	monitoring.PassDuration.Observe(duration.Seconds())

	coordLogger.Info("SYNC_PASS_DONE", map[string]any{
		logging.PASS_ID:  passID,
		logging.RESOURCE: d.Resource,
		logging.PAGES:    outcome.Pages,
		logging.STATUS:   outcome.Status(),
	})

	if c.audit != nil {
		c.audit.Record(context.WithoutCancel(ctx), passlog.Entry{
			PassID:    passID,
			Account:   c.account,
			Resource:  d.Resource,
			Key:       d.Key,
			Status:    outcome.Status(),
			Message:   outcome.Message,
			Pages:     outcome.Pages,
			Duration:  duration,
			StartedAt: startedAt,
		})
	}

	if c.listener != nil {
		c.listener(CompletionEvent{
			PassID:    passID,
			Account:   c.account,
			Resource:  d.Resource,
			Key:       d.Key,
			Message:   outcome.Message,
			Cancelled: outcome.Cancelled,
			Pages:     outcome.Pages,
		})
	}
	return outcome
}

func (c *Coordinator) syncEnabled() bool {
	if c.prefs == nil {
		return true
	}
	return c.prefs.Get().SyncEnabled
}

func (c *Coordinator) isOnline() bool {
	if c.online == nil {
		return true
	}
	return c.online()
}

func (c *Coordinator) persistPage(startTime int64) func(ctx context.Context, body *bgg.PlaysResponse) error {
	return func(ctx context.Context, body *bgg.PlaysResponse) error {
		page := plays.FromResponsePage(body)
		_, err := c.persister.SaveAll(ctx, page, startTime)
		return err
	}
}

func validPlaysBody(body *bgg.PlaysResponse) bool {
	return body.Username != "" || body.Total == 0
}

func (c *Coordinator) playsByGamePass(gameID int64, startTime int64) *Driver[bgg.PlaysResponse] {
	return &Driver[bgg.PlaysResponse]{
		Resource:  "plays_by_game",
		Key:       fmt.Sprintf("game_id=%d", gameID),
		IsRequestParamsValid: func() bool {
			return c.account != "" && gameID > 0
		},
		Online:      c.isOnline,
		SyncEnabled: c.syncEnabled,
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			return c.client.PlaysByGame(ctx, c.account, gameID, page)
		},
		ValidateBody: validPlaysBody,
		Persist:      c.persistPage(startTime),
		HasMore: func(body *bgg.PlaysResponse) bool {
			return body.HasMorePages()
		},
		Finalize: func(ctx context.Context) error {
			deleted, err := c.persister.DeleteUnupdatedPlaysByGame(ctx, gameID, startTime)
			if err != nil {
				return err
			}
			if err := c.persister.TouchGameTimestamp(ctx, gameID, startTime); err != nil {
				return err
			}
			coordLogger.Debug("STALE_PLAYS_DELETED", map[string]any{
				logging.GAME_ID: gameID,
				"deleted":       deleted,
			})
			return c.publishStats(ctx, messages.PlayStatsRequest{Account: c.account, GameID: gameID})
		},
	}
}

func (c *Coordinator) playsByDatePass(minDate, maxDate string, startTime int64) *Driver[bgg.PlaysResponse] {
	return &Driver[bgg.PlaysResponse]{
		Resource:  "plays_by_date",
		Key:       fmt.Sprintf("min_date=%s,max_date=%s", minDate, maxDate),
		IsRequestParamsValid: func() bool {
			return c.account != "" && minDate != "" && maxDate != ""
		},
		Online:      c.isOnline,
		SyncEnabled: c.syncEnabled,
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			return c.client.PlaysByDate(ctx, c.account, minDate, maxDate, page)
		},
		ValidateBody: validPlaysBody,
		Persist:      c.persistPage(startTime),
		HasMore: func(body *bgg.PlaysResponse) bool {
			return body.HasMorePages()
		},
		// No deletion finalize: a date window cannot assert absence of plays
		// outside it.
	}
}

func (c *Coordinator) playsPass(startTime int64) *Driver[bgg.PlaysResponse] {
	return &Driver[bgg.PlaysResponse]{
		Resource:  "plays",
		Key:       fmt.Sprintf("account=%s", c.account),
		IsRequestParamsValid: func() bool {
			return c.account != ""
		},
		Online:      c.isOnline,
		SyncEnabled: c.syncEnabled,
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			return c.client.Plays(ctx, c.account, page)
		},
		ValidateBody: validPlaysBody,
		Persist:      c.persistPage(startTime),
		HasMore: func(body *bgg.PlaysResponse) bool {
			return body.HasMorePages()
		},
		Finalize: func(ctx context.Context) error {
			deleted, err := c.persister.DeleteUnupdatedPlays(ctx, startTime)
			if err != nil {
				return err
			}
			coordLogger.Debug("STALE_PLAYS_DELETED", map[string]any{
				logging.ACCOUNT: c.account,
				"deleted":       deleted,
			})
			return nil
		},
	}
}
