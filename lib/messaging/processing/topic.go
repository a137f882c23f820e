package processing

import (
	"context"
	"fmt"

	"playsync/lib/messaging/rabbit"
	"playsync/lib/utils/logging"
)

// TopicConfig defines the configuration for a topic
type TopicConfig struct {
	QueueName     string
	Workers       int
	PrefetchCount int
}

// Topic represents a queue processing topic with a fixed worker pool
type Topic struct {
	Config    TopicConfig
	processor ProcessorFunc
}

// NewTopic creates a new topic with the given config and processor
func NewTopic(config TopicConfig, processor ProcessorFunc) Topic {
	return Topic{
		Config:    config,
		processor: processor,
	}
}

// StartTopic declares the topic's queue and starts its worker goroutines.
// Workers stop when ctx is cancelled.
func StartTopic(ctx context.Context, topic Topic) error {
	workers := topic.Config.Workers
	if workers < 1 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		if err := startWorkerGoroutine(ctx, topic, i); err != nil {
			return err
		}
	}
	return nil
}

func startWorkerGoroutine(ctx context.Context, topic Topic, workerID int) error {
	ch, err := rabbit.Conn.Channel()
	if err != nil {
		return err
	}

	q, err := ch.QueueDeclare(
		topic.Config.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return err
	}

	if topic.Config.PrefetchCount > 0 {
		if err := ch.Qos(topic.Config.PrefetchCount, 0, false); err != nil {
			ch.Close()
			return err
		}
	}

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return err
	}

	prefix := fmt.Sprintf("%s::%d", topic.Config.QueueName, workerID)
	worker := &Worker{
		ID:        workerID,
		QueueName: topic.Config.QueueName,
		Logger:    logging.NewLogger(prefix),
		ctx:       ctx,
		channel:   msgs,
		processor: topic.processor,
	}

	go func() {
		defer ch.Close()
		worker.Run()
	}()

	return nil
}
