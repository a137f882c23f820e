package main

import (
	"context"
	"flag"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playsync/lib/database/postgres"
	"playsync/lib/database/sqlite"
	"playsync/lib/env"
	"playsync/lib/messaging/processing"
	"playsync/lib/messaging/publishing"
	queueworkers "playsync/lib/messaging/queue-workers"
	"playsync/lib/messaging/rabbit"
	"playsync/lib/monitoring"
	"playsync/lib/prefs"
	"playsync/lib/services/passlog"
	"playsync/lib/services/plays"
	"playsync/lib/services/sync"
	"playsync/lib/store"
	"playsync/lib/utils/logging"
	"playsync/lib/web/bgg"
)

var logger = logging.NewLogger("SYNCD")

func main() {
	flag.Parse()

	flushSentry, recoverPanics := logger.InitSentry()
	defer flushSentry()
	defer recoverPanics()

	monitoring.RegisterSyncMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := openStore(ctx)

	prefStore, err := prefs.Open(env.PrefsFilePath)
	if err != nil {
		logger.Fatal("FAILED_TO_OPEN_PREFS", err, map[string]any{
			logging.PATH: env.PrefsFilePath,
		})
	}
	defer prefStore.Close()

	logger.Debug("WAITING_ON_CONNECTIONS", map[string]any{
		"services": []string{"rabbitmq", "publishing"},
	})
	rabbit.Wait()
	publishing.Wait()

	online := onlineCheck()
	persister := plays.NewPersister(st)
	coordinator := sync.NewCoordinator(env.BGGUsername, bgg.DefaultClient, persister, prefStore, online)
	coordinator.SetListener(func(ev sync.CompletionEvent) {
		if ev.Message != "" {
			logger.Warn("SYNC_COMPLETED_WITH_ERROR", nil, map[string]any{
				logging.PASS_ID:  ev.PassID,
				logging.RESOURCE: ev.Resource,
				logging.KEY:      ev.Key,
				"message":        ev.Message,
			})
		}
	})

	if recorder := openAuditRecorder(ctx); recorder != nil {
		coordinator.SetAuditRecorder(recorder)
	}

	signals := make(chan sync.Signal, 8)
	go coordinator.ListenForCancellations(ctx, signals)
	go watchConnectivity(ctx, online, signals)
	go watchOSSignals(cancel, coordinator, signals)

	if err := processing.StartTopic(ctx, queueworkers.PlaysSyncTopic(coordinator)); err != nil {
		logger.Fatal("FAILED_TO_START_SYNC_TOPIC", err, nil)
	}

	logger.Info("SYNCD_STARTED", map[string]any{
		logging.ACCOUNT: env.BGGUsername,
		"store":         env.StoreBackend,
	})

	<-ctx.Done()
	logger.Info("SYNCD_STOPPED", nil)
}

func openStore(ctx context.Context) *store.Store {
	var st *store.Store
	switch env.StoreBackend {
	case "postgres":
		postgres.Wait()
		st = store.New(postgres.DB, store.DialectPostgres)
	default:
		sqlite.Wait()
		st = store.New(sqlite.DB, store.DialectSQLite)
	}
	if err := st.InitSchema(ctx); err != nil {
		logger.Fatal("FAILED_TO_INIT_SCHEMA", err, map[string]any{
			"store": env.StoreBackend,
		})
	}
	return st
}

// openAuditRecorder wires the ClickHouse pass audit log when a host is
// configured. Audit logging is best-effort; a missing table is fatal only
// because it means the deployment is misconfigured.
func openAuditRecorder(ctx context.Context) *passlog.Recorder {
	if os.Getenv("CLICKHOUSE_HOST") == "" {
		logger.Info("PASS_LOG_DISABLED", nil)
		return nil
	}
	recorder := passlog.NewRecorder()
	if err := recorder.EnsureTable(ctx); err != nil {
		logger.Fatal("FAILED_TO_INIT_PASS_LOG", err, nil)
	}
	return recorder
}

// onlineCheck probes reachability of the remote API's host. A TCP dial is
// enough; the sync pass surfaces real HTTP failures itself.
func onlineCheck() func() bool {
	host := "boardgamegeek.com:443"
	if u, err := url.Parse(env.BGGApiBase); err == nil && u.Host != "" {
		port := u.Port()
		if port == "" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	return func() bool {
		conn, err := net.DialTimeout("tcp", host, 3*time.Second)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}

// watchConnectivity emits a connectivity-lost signal when the remote host
// transitions from reachable to unreachable.
func watchConnectivity(ctx context.Context, online func() bool, signals chan<- sync.Signal) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	wasOnline := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isOnline := online()
			if wasOnline && !isOnline {
				signals <- sync.SignalConnectivityLost
			} else if !wasOnline && isOnline {
				signals <- sync.SignalConnectivityRestored
			}
			wasOnline = isOnline
		}
	}
}

// watchOSSignals maps SIGUSR1 to a user cancel of the running sync and
// SIGINT/SIGTERM to daemon shutdown.
func watchOSSignals(cancel context.CancelFunc, coordinator *sync.Coordinator, signals chan<- sync.Signal) {
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	for sig := range osSignals {
		switch sig {
		case syscall.SIGUSR1:
			signals <- sync.SignalUserCancel
		default:
			coordinator.CancelSync("daemon shutting down")
			cancel()
			return
		}
	}
}
