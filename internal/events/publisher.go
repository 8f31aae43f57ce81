package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/amrixahmad/questionsmith/internal/logging"
)

// Publisher kinds accepted by Config.Publisher.
const (
	KindChannel = "channel"
	KindKafka   = "kafka"
	KindNoop    = "noop"
)

// Config selects and configures the publisher.
type Config struct {
	Publisher    string
	KafkaBrokers []string
}

// WatermillPublisher adapts a watermill message.Publisher to Publisher.
type WatermillPublisher struct {
	pub    message.Publisher
	logger logging.Logger
}

// NewWatermillPublisher wraps pub. logger may be nil.
func NewWatermillPublisher(pub message.Publisher, logger logging.Logger) *WatermillPublisher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &WatermillPublisher{pub: pub, logger: logger.With("component", "events")}
}

// Publish marshals e and sends it on the topic named by e.Type.
func (p *WatermillPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(e.ID, payload)
	msg.Metadata.Set("event_type", e.Type)
	msg.Metadata.Set("occurred_at", e.OccurredAt.Format(time.RFC3339))
	msg.SetContext(ctx)

	if err := p.pub.Publish(e.Type, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			"event_id", e.ID, "event_type", e.Type, "error", err)
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	p.logger.DebugContext(ctx, "published event", "event_id", e.ID, "event_type", e.Type)
	return nil
}

// Close closes the underlying watermill publisher.
func (p *WatermillPublisher) Close() error {
	return p.pub.Close()
}

// NewGoChannel returns an in-process publisher together with the
// GoChannel it publishes to, so callers can subscribe.
func NewGoChannel(logger logging.Logger) (*WatermillPublisher, *gochannel.GoChannel) {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermillLogger(logger))
	return NewWatermillPublisher(ch, logger), ch
}

// NewKafka returns a publisher writing to the given Kafka brokers.
func NewKafka(brokers []string, logger logging.Logger) (*WatermillPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher: no brokers configured")
	}
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermillLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return NewWatermillPublisher(pub, logger), nil
}

// NewFromConfig builds the publisher named by cfg.Publisher. An empty or
// unknown kind falls back to the in-process channel.
func NewFromConfig(cfg Config, logger logging.Logger) (Publisher, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	switch strings.ToLower(cfg.Publisher) {
	case KindKafka:
		logger.Info("creating kafka event publisher", "brokers", strings.Join(cfg.KafkaBrokers, ","))
		return NewKafka(cfg.KafkaBrokers, logger)
	case KindNoop, "none", "disabled":
		return Noop{}, nil
	case "", KindChannel, "gochannel":
		p, _ := NewGoChannel(logger)
		return p, nil
	default:
		logger.Warn("unknown event publisher, falling back to channel", "publisher", cfg.Publisher)
		p, _ := NewGoChannel(logger)
		return p, nil
	}
}

func watermillLogger(l logging.Logger) watermill.LoggerAdapter {
	if l == nil {
		return watermill.NopLogger{}
	}
	return watermill.NewSlogLogger(logging.Slog(l))
}

// Recorder keeps published events in memory. It is meant for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
