package sync

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"playsync/lib/messaging/messages"
	"playsync/lib/prefs"
	"playsync/lib/services/plays"
	"playsync/lib/store"
	"playsync/lib/web/bgg"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onePlayPage = `<plays username="alice" userid="1" total="1" page="1">
  <play id="501" date="2024-03-09" quantity="1" length="0" incomplete="0" nowinstats="0" location="home">
    <item name="Catan" objecttype="thing" objectid="13">
      <subtypes><subtype value="boardgame"/></subtypes>
    </item>
    <players>
      <player username="alice" userid="1" name="Alice" startposition="1" color="Red" score="10" new="0" rating="0" win="1"/>
    </players>
  </play>
</plays>`

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st := store.New(db, store.DialectSQLite)
	require.NoError(t, st.InitSchema(context.Background()))
	return st
}

func newTestPrefs(t *testing.T, p prefs.Prefs) *prefs.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.json")
	body := fmt.Sprintf(`{"sync_enabled":%t,"sync_only_wifi":%t,"sync_only_charging":%t}`,
		p.SyncEnabled, p.SyncOnlyWifi, p.SyncOnlyCharging)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ps, err := prefs.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { ps.Close() })
	return ps
}

func TestRequestSyncWithoutAccount(t *testing.T) {
	c := NewCoordinator("", nil, nil, nil, nil)
	published := false
	c.publishSync = func(ctx context.Context, req messages.SyncRequest) error {
		published = true
		return nil
	}

	require.NoError(t, c.RequestSync(context.Background(), ScopePlaysDownload))
	assert.False(t, published, "no account configured means no request")
	assert.False(t, c.IsActiveOrPending())
}

func TestRequestGameSyncPublishes(t *testing.T) {
	c := NewCoordinator("alice", nil, nil, nil, nil)
	var got messages.SyncRequest
	c.publishSync = func(ctx context.Context, req messages.SyncRequest) error {
		got = req
		return nil
	}

	require.NoError(t, c.RequestGameSync(context.Background(), 13))

	assert.Equal(t, "alice", got.Account)
	assert.Equal(t, int(ScopePlaysDownload), got.Scope)
	assert.Equal(t, int64(13), got.GameID)
	assert.NotEmpty(t, got.PassID)
	assert.True(t, c.IsActiveOrPending(), "a published request counts as pending")
}

func TestRunPlaysByGamePass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "13", r.URL.Query().Get("id"))
		fmt.Fprint(w, onePlayPage)
	}))
	defer server.Close()

	st := newTestStore(t)
	c := NewCoordinator("alice", bgg.NewClient(server.URL), plays.NewPersister(st), nil, nil)

	var statsReq messages.PlayStatsRequest
	c.publishStats = func(ctx context.Context, req messages.PlayStatsRequest) error {
		statsReq = req
		return nil
	}
	var event CompletionEvent
	c.SetListener(func(ev CompletionEvent) { event = ev })

	c.Run(context.Background(), messages.SyncRequest{
		PassID:  "pass-1",
		Account: "alice",
		Scope:   int(ScopePlaysDownload),
		GameID:  13,
	})

	exists, err := st.RowExists(context.Background(), store.TablePlays, "play_id = ?", 501)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "pass-1", event.PassID)
	assert.Empty(t, event.Message)
	assert.False(t, event.Cancelled)
	assert.Equal(t, 1, event.Pages)
	assert.Equal(t, int64(13), statsReq.GameID, "a finished per-game pass triggers the stats recompute")
	assert.False(t, c.IsActiveOrPending())
}

func TestRunIgnoresAccountMismatch(t *testing.T) {
	c := NewCoordinator("alice", nil, nil, nil, nil)
	called := false
	c.SetListener(func(CompletionEvent) { called = true })

	c.Run(context.Background(), messages.SyncRequest{Account: "mallory", Scope: int(ScopePlaysDownload)})
	assert.False(t, called)
}

// blockingFake parks a pass inside its first fetch until released or
// cancelled.
type blockingFake struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingFake() *blockingFake {
	return &blockingFake{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingFake) driver() *Driver[bgg.PlaysResponse] {
	return &Driver[bgg.PlaysResponse]{
		Resource: "plays_blocking",
		Key:      "test",
		Fetch: func(ctx context.Context, page int) (*bgg.HttpResult[bgg.PlaysResponse], error) {
			close(b.started)
			select {
			case <-b.release:
				return &bgg.HttpResult[bgg.PlaysResponse]{
					Success:    true,
					Data:       &bgg.PlaysResponse{Username: "alice", Total: 1, Page: 1},
					StatusCode: 200,
				}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
		Persist: func(ctx context.Context, body *bgg.PlaysResponse) error { return nil },
	}
}

func TestRunPassSingleFlight(t *testing.T) {
	c := NewCoordinator("alice", nil, nil, nil, nil)
	fake := newBlockingFake()

	done := make(chan Outcome, 1)
	go func() {
		done <- c.runPass(context.Background(), "pass-1", fake.driver())
	}()
	<-fake.started
	assert.True(t, c.IsActiveOrPending())

	second := c.runPass(context.Background(), "pass-2", fake.driver())
	assert.Equal(t, "A sync for this resource is already in progress.", second.Message)

	close(fake.release)
	outcome := <-done
	assert.True(t, outcome.Success())
	assert.False(t, c.IsActiveOrPending())
}

func TestCancelSyncCancelsInflightPass(t *testing.T) {
	c := NewCoordinator("alice", nil, nil, nil, nil)
	fake := newBlockingFake()

	done := make(chan Outcome, 1)
	go func() {
		done <- c.runPass(context.Background(), "pass-1", fake.driver())
	}()
	<-fake.started

	c.CancelSync("cancelled at user request")

	select {
	case outcome := <-done:
		assert.True(t, outcome.Cancelled)
		assert.Empty(t, outcome.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("pass did not observe cancellation")
	}
}

func TestCancelSyncDropsQueuedRequests(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		fmt.Fprint(w, onePlayPage)
	}))
	defer server.Close()

	st := newTestStore(t)
	c := NewCoordinator("alice", bgg.NewClient(server.URL), plays.NewPersister(st), nil, nil)

	var queued []messages.SyncRequest
	c.publishSync = func(ctx context.Context, req messages.SyncRequest) error {
		queued = append(queued, req)
		return nil
	}
	c.publishStats = func(ctx context.Context, req messages.PlayStatsRequest) error { return nil }
	var events []CompletionEvent
	c.SetListener(func(ev CompletionEvent) { events = append(events, ev) })

	require.NoError(t, c.RequestGameSync(context.Background(), 13))
	require.True(t, c.IsActiveOrPending())

	c.CancelSync("cancelled at user request")
	assert.False(t, c.IsActiveOrPending(), "a cancelled request no longer counts as pending")

	c.Run(context.Background(), queued[0])
	assert.Empty(t, events, "a request issued before the cancel is consumed without running")
	assert.Zero(t, fetches.Load())

	require.NoError(t, c.RequestGameSync(context.Background(), 13))
	c.Run(context.Background(), queued[1])
	require.Len(t, events, 1, "a request issued after the cancel runs normally")
	assert.Empty(t, events[0].Message)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestSignalMapping(t *testing.T) {
	tests := []struct {
		name       string
		signal     Signal
		prefs      prefs.Prefs
		wantCancel bool
	}{
		{"user cancel always cancels", SignalUserCancel, prefs.Prefs{SyncEnabled: true}, true},
		{"battery low always cancels", SignalBatteryLow, prefs.Prefs{SyncEnabled: true}, true},
		{"power disconnect with charging-only", SignalPowerDisconnected, prefs.Prefs{SyncEnabled: true, SyncOnlyCharging: true}, true},
		{"power disconnect without charging-only", SignalPowerDisconnected, prefs.Prefs{SyncEnabled: true}, false},
		{"connectivity lost with wifi-only", SignalConnectivityLost, prefs.Prefs{SyncEnabled: true, SyncOnlyWifi: true}, true},
		{"connectivity lost without wifi-only", SignalConnectivityLost, prefs.Prefs{SyncEnabled: true}, false},
		{"battery okay never cancels", SignalBatteryOkay, prefs.Prefs{SyncEnabled: true}, false},
		{"power connected never cancels", SignalPowerConnected, prefs.Prefs{SyncEnabled: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCoordinator("alice", nil, nil, newTestPrefs(t, tt.prefs), nil)
			fake := newBlockingFake()

			done := make(chan Outcome, 1)
			go func() {
				done <- c.runPass(context.Background(), "pass-1", fake.driver())
			}()
			<-fake.started

			c.handleSignal(tt.signal)

			if tt.wantCancel {
				select {
				case outcome := <-done:
					assert.True(t, outcome.Cancelled)
				case <-time.After(5 * time.Second):
					t.Fatal("signal should have cancelled the pass")
				}
			} else {
				select {
				case <-done:
					t.Fatal("signal should not have cancelled the pass")
				case <-time.After(100 * time.Millisecond):
				}
				close(fake.release)
				<-done
			}
		})
	}
}
