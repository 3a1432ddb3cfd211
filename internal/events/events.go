package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/models"
)

const (
	TopicLogin = "aee.login"

	// DataHoraLayout is the timestamp format stored in the logs table.
	DataHoraLayout = "02/01/2006 15:04:05"

	consumerGroup = "aee-login-audit"
)

// LoginEvent is published after every successful authentication.
type LoginEvent struct {
	RF       string `json:"rf"`
	DataHora string `json:"data_hora"`
}

// LoginLogWriter is the slice of the login log repository the consumer needs.
type LoginLogWriter interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.LoginLog) error
}

// Bus carries audit events. It runs on an in-process channel unless kafka
// brokers are configured.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	shared     bool
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewBus builds a kafka-backed bus when brokers are given and a GoChannel bus
// otherwise.
func NewBus(brokers []string, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger)

	if len(brokers) == 0 {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &Bus{publisher: ch, subscriber: ch, shared: true, logger: logger}, nil
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		ConsumerGroup:         consumerGroup,
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &Bus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

// PublishLogin emits a login event for rf stamped with at.
func (b *Bus) PublishLogin(ctx context.Context, rf string, at time.Time) error {
	payload, err := json.Marshal(LoginEvent{RF: rf, DataHora: at.Format(DataHoraLayout)})
	if err != nil {
		return fmt.Errorf("failed to encode login event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.publisher.Publish(TopicLogin, msg); err != nil {
		return fmt.Errorf("failed to publish login event: %w", err)
	}
	return nil
}

// ConsumeLogins subscribes to login events and appends each one to the login
// trail until ctx is cancelled or the bus is closed. Write failures are logged
// and the message is acked anyway.
func (b *Bus) ConsumeLogins(ctx context.Context, writer LoginLogWriter) error {
	messages, err := b.subscriber.Subscribe(ctx, TopicLogin)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicLogin, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			b.handleLogin(ctx, writer, msg)
		}
	}()
	return nil
}

func (b *Bus) handleLogin(ctx context.Context, writer LoginLogWriter, msg *message.Message) {
	defer msg.Ack()

	var event LoginEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		b.logger.Warn("Discarding malformed login event", "message_id", msg.UUID, "error", err)
		return
	}

	// a received event is written even when the consumer is being stopped
	writeCtx := context.WithoutCancel(ctx)
	if err := writer.Create(writeCtx, nil, &models.LoginLog{RF: event.RF, DataHora: event.DataHora}); err != nil {
		b.logger.Error("Failed to record login", "rf", event.RF, "error", err)
		return
	}
	b.logger.Debug("Login recorded", "rf", event.RF)
}

// Close shuts down publisher and subscriber and waits for the consumer to
// finish the events it already received. Call it before cancelling the
// consumer context.
func (b *Bus) Close() error {
	var firstErr error
	if err := b.publisher.Close(); err != nil {
		firstErr = err
	}
	if !b.shared {
		if err := b.subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.wg.Wait()
	return firstErr
}
