package queueworkers

import (
	"encoding/json"
	"fmt"

	"playsync/lib/messaging/messages"
	"playsync/lib/messaging/processing"
	"playsync/lib/messaging/routing"
	"playsync/lib/services/sync"
	"playsync/lib/utils/logging"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PlaysSyncTopic creates the sync scheduling topic. One worker: the account
// sync model allows at most one active pass at a time.
func PlaysSyncTopic(coordinator *sync.Coordinator) processing.Topic {
	return processing.NewTopic(processing.TopicConfig{
		QueueName:     routing.PlaysSync,
		Workers:       1,
		PrefetchCount: 1,
	}, func(worker *processing.Worker, message amqp.Delivery) error {
		return processPlaysSync(coordinator, worker, message)
	})
}

func processPlaysSync(coordinator *sync.Coordinator, worker *processing.Worker, message amqp.Delivery) error {
	var req messages.SyncRequest
	if err := json.Unmarshal(message.Body, &req); err != nil {
		return fmt.Errorf("failed to parse sync request: %w", err)
	}

	worker.Logger.Debug("SYNC_REQUEST_RECEIVED", map[string]any{
		logging.PASS_ID: req.PassID,
		logging.SCOPE:   req.Scope,
	})

	coordinator.Run(worker.Context(), req)
	return nil
}
