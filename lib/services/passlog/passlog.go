package passlog

import (
	"context"
	"time"

	"playsync/lib/database/clickhouse"
	"playsync/lib/utils/logging"
	"playsync/lib/utils/network"
	"playsync/lib/utils/retry"

	ch "github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

var logger = logging.NewLogger("PASS_LOG")

// Entry is one terminated sync pass.
type Entry struct {
	PassID    string
	Account   string
	Resource  string
	Key       string
	Status    string
	Message   string
	Pages     int
	Duration  time.Duration
	StartedAt time.Time
}

// Recorder appends terminated passes to ClickHouse. Recording is best-effort:
// a failed append is logged and retried, never surfaced to the pass itself.
type Recorder struct {
	conn ch.Conn
}

func NewRecorder() *Recorder {
	clickhouse.Wait()
	return &Recorder{conn: clickhouse.DB}
}

const createTableDDL = `
CREATE TABLE IF NOT EXISTS play_sync_pass (
	pass_id String,
	account String,
	resource String,
	key String,
	status String,
	message String,
	pages UInt32,
	duration_ms UInt64,
	started_at DateTime
) ENGINE = MergeTree()
ORDER BY (account, started_at)`

// EnsureTable creates the audit table when it does not exist yet.
func (r *Recorder) EnsureTable(ctx context.Context) error {
	return r.conn.Exec(ctx, createTableDDL)
}

// Record appends one pass entry. Failures never propagate.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	err := retry.WithRetry(ctx, retry.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		ShouldRetry:  network.Retryable,
	}, func(attempt int) error {
		return r.insert(ctx, entry)
	})
	if err != nil {
		logger.Warn("PASS_LOG_APPEND_FAILED", err, map[string]any{
			logging.PASS_ID:  entry.PassID,
			logging.RESOURCE: entry.Resource,
		})
	}
}

func (r *Recorder) insert(ctx context.Context, entry Entry) error {
	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO play_sync_pass")
	if err != nil {
		return err
	}
	defer batch.Abort()

	err = batch.Append(
		entry.PassID,
		entry.Account,
		entry.Resource,
		entry.Key,
		entry.Status,
		entry.Message,
		uint32(entry.Pages),
		uint64(entry.Duration.Milliseconds()),
		entry.StartedAt,
	)
	if err != nil {
		return err
	}
	return batch.Send()
}
