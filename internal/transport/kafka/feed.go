package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"delivery-dispatch/internal/logx"
	dsync "delivery-dispatch/internal/sync"
)

// HandleFunc applies one full-collection feed delivery.
type HandleFunc func(context.Context, dsync.Collections) error

// Feed wraps a Sarama consumer group and dispatches feed deliveries to
// a handler. Each message carries the full replacement collections,
// not a delta, so redelivery after a handler error is harmless.
type Feed struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
	logger  logx.Logger
}

// NewFeed creates a feed consumer. It returns (nil, nil) when the
// broker settings are absent so single-node runs work without Kafka.
func NewFeed(brokers []string, groupID, topic string, h HandleFunc, logger logx.Logger) (*Feed, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Feed{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}, nil
}

// Run consumes until the context ends.
func (f *Feed) Run(ctx context.Context) error {
	if f == nil {
		return nil
	}

	h := &groupHandler{f: f}

	for {
		if err := f.group.Consume(ctx, []string{f.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Error("feed consume error", logx.Any("err", err))
			time.Sleep(time.Second)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close shuts the consumer group down.
func (f *Feed) Close() error {
	if f == nil {
		return nil
	}
	return f.group.Close()
}

type groupHandler struct{ f *Feed }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var dto FeedDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			h.f.logger.Warn("feed: bad json", logx.Any("err", err))
			sess.MarkMessage(msg, "")
			continue
		}

		if err := h.f.handler(sess.Context(), ToDomain(dto)); err != nil {
			h.f.logger.Error("feed: handle failed, retry",
				logx.Int64("offset", msg.Offset),
				logx.Any("err", err),
			)
			return err
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
