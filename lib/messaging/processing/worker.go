package processing

import (
	"context"

	"playsync/lib/utils/logging"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker consumes one delivery stream for a topic until its context is
// cancelled.
type Worker struct {
	ID        int
	QueueName string
	Logger    logging.Logger

	ctx       context.Context
	channel   <-chan amqp.Delivery
	processor ProcessorFunc
}

// ProcessorFunc defines the function signature for processing messages
type ProcessorFunc func(worker *Worker, message amqp.Delivery) error

// Context returns the worker's cancellation context.
func (w *Worker) Context() context.Context {
	return w.ctx
}

// Run starts the worker loop and processes messages until the context is cancelled
func (w *Worker) Run() {
	for {
		select {
		case msg, ok := <-w.channel:
			if !ok {
				return
			}

			err := w.processor(w, msg)
			if err != nil {
				w.Logger.Error("MESSAGE_PROCESSING_ERROR", err, map[string]any{
					logging.QUEUE: w.QueueName,
				})
				// NACK with requeue=false to prevent infinite retries on
				// permanent failures
				if err := msg.Nack(false, false); err != nil {
					panic(err)
				}
				continue
			}

			if err := msg.Ack(false); err != nil {
				w.Logger.Error("MESSAGE_ACK_ERROR", err, nil)
			}

		case <-w.ctx.Done():
			w.Logger.Info("WORKER_STOPPING", map[string]any{
				logging.QUEUE: w.QueueName,
			})
			return
		}
	}
}
