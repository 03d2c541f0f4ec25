package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

const changesTopic = "cart-changes"

// Publisher writes cart change events to the fan-out topic. Events carry the
// originating session id so subscribers can skip their own writes.
type Publisher struct {
	writer *kafka.Writer
	origin string
}

func NewPublisher(origin string, brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  changesTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, origin: origin}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.FeedEvent) error {
	ev.Origin = p.origin
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal feed event: %w", err)
	}

	msg := kafka.Message{Key: []byte(eventUser(ev)), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish feed event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing feed writer: %v", err)
	}
}

// KafkaFeed consumes the fan-out topic. Each subscription gets its own group
// id so every session sees every event.
type KafkaFeed struct {
	origin  string
	brokers []string
}

func NewKafkaFeed(origin string, brokers ...string) *KafkaFeed {
	return &KafkaFeed{origin: origin, brokers: brokers}
}

func (f *KafkaFeed) Subscribe(ctx context.Context, userID string, fn func(domain.FeedEvent)) (func(), error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  f.brokers,
		Topic:    changesTopic,
		GroupID:  fmt.Sprintf("cartsync-%s", f.origin),
		MaxBytes: 10e6, // 10MB
	})

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer func() {
			if err := reader.Close(); err != nil {
				log.Printf("error closing feed reader: %v", err)
			}
		}()
		for {
			m, err := reader.ReadMessage(subCtx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("cart feed: error reading message: %v", err)
				continue
			}

			var ev domain.FeedEvent
			if err := json.Unmarshal(m.Value, &ev); err != nil {
				log.Printf("cart feed: error parsing message: %v", err)
				continue
			}
			if ev.Origin == f.origin || eventUser(ev) != userID {
				continue
			}
			fn(ev)
		}
	}()

	return cancel, nil
}
