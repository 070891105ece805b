package kafka

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"

	kafkaconfig "fitstudio/pkg/kafka/config"
	"fitstudio/pkg/logger"
)

// Consumer reads a topic within a consumer group, invoking the handler for
// every message. Handler failures are retried a bounded number of times;
// exhausted messages are committed and logged so the group never stalls.
type Consumer struct {
	reader     *kafka.Reader
	handler    MessageHandler
	maxRetries int
	log        *logger.Logger
	mu         sync.RWMutex
	closed     bool
}

func NewConsumer(cfg *kafkaconfig.Config, topic, groupID string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic cannot be empty")
	}
	if groupID == "" {
		return nil, errors.New("group ID cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: cfg.ConsumerMinBytes,
		MaxBytes: cfg.ConsumerMaxBytes,
		MaxWait:  cfg.ConsumerMaxWait,
		Logger:   kafka.LoggerFunc(func(string, ...any) {}),
	})

	return &Consumer{
		reader:     reader,
		handler:    handler,
		maxRetries: cfg.ConsumerMaxRetries,
		log:        log,
	}, nil
}

// Start consumes until ctx is cancelled or the consumer is closed.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		c.mu.RLock()
		closed := c.closed
		c.mu.RUnlock()
		if closed {
			return ErrConsumerClosed
		}

		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return err
			}
			c.log.Error("Failed to fetch message", "error", err)
			continue
		}

		msg := Message{
			Key:       string(kafkaMsg.Key),
			Value:     kafkaMsg.Value,
			Timestamp: kafkaMsg.Time,
			Headers:   make(map[string]string, len(kafkaMsg.Headers)),
		}
		for _, h := range kafkaMsg.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			c.log.Error("Failed to commit offset", "error", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg Message) {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return
		}
		c.log.Warn("Message handling failed",
			"event_id", msg.Headers[HeaderEventID],
			"event_type", msg.EventType(),
			"attempt", attempt+1,
			"error", err,
		)
	}
	c.log.Error("Message dropped after retries",
		"event_id", msg.Headers[HeaderEventID],
		"event_type", msg.EventType(),
		"error", err,
	)
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.reader.Close()
}
