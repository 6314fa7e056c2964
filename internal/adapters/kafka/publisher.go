package kafkaad

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"placereview/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes review events keyed by place id, so events of one place
// stay ordered within a partition.
type Publisher struct {
	w messageWriter
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

func NewPublisher(w messageWriter) *Publisher {
	return &Publisher{w: w}
}

func (p *Publisher) PublishReview(ctx context.Context, ev domain.ReviewEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.PlaceID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
}

func (p *Publisher) Close() error { return p.w.Close() }
