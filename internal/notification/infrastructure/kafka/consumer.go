package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/doglivery/pkg/outbox"
	"github.com/dmehra2102/doglivery/pkg/tracing"
)

type EventHandler interface {
	Handle(ctx context.Context, eventType string, payload []byte) error
}

type Deduper interface {
	Key(topic string, partition int, offset int64) string
	Processed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	log        *slog.Logger
	reader     MessageReader
	handler    EventHandler
	idem       Deduper
	tracer     trace.Tracer
	retryBase  time.Duration
	retryLimit time.Duration
}

type Option func(*Consumer)

// WithRetryBackoff sets the first and the longest wait between attempts
// at a message that failed.
func WithRetryBackoff(base, limit time.Duration) Option {
	return func(c *Consumer) { c.retryBase, c.retryLimit = base, limit }
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader MessageReader, handler EventHandler, idem Deduper, opts ...Option) *Consumer {
	c := &Consumer{
		log:        log,
		reader:     reader,
		handler:    handler,
		idem:       idem,
		tracer:     otel.Tracer("notification-consumer"),
		retryBase:  500 * time.Millisecond,
		retryLimit: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled. A message is committed only once
// it has been handled or found to be a duplicate; a failing message is
// retried in place with backoff, so later offsets never overtake it.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		wait := c.retryBase
		for attempt := 1; ; attempt++ {
			err := c.process(ctx, msg)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("message processing failed", "offset", msg.Offset, "attempt", attempt, "retry_in", wait, "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			wait = min(wait*2, c.retryLimit)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// process handles msg unless it was handled before. The message is marked
// only after the handler succeeded, so a failure leaves it eligible for
// the next attempt.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	done, err := c.idem.Processed(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if done {
		c.log.Info("duplicate message skipped", "key", key)
		return nil
	}

	eventType := tracing.HeaderValue(msg.Headers, outbox.EventTypeHeader)
	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume"+eventType, trace.WithAttributes(
		attribute.String("messaging.kafka.topic", msg.Topic),
		attribute.Int64("messaging.kafka.offset", msg.Offset),
	))
	defer span.End()

	if err := c.handler.Handle(msgCtx, eventType, msg.Value); err != nil {
		span.RecordError(err)
		return fmt.Errorf("handle %s: %w", eventType, err)
	}
	if err := c.idem.MarkProcessed(ctx, key); err != nil {
		c.log.Warn("idempotency mark failed", "key", key, "err", err)
	}
	return nil
}
