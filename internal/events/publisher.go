package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"homecare/models"
)

// MessageWriter is the subset of the kafka-go Writer the publisher relies on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ResultEvent is the envelope published for every completed matching request.
type ResultEvent struct {
	EventID     string             `json:"event_id"`
	CompletedAt time.Time          `json:"completed_at"`
	Result      models.MatchResult `json:"result"`
}

// Publisher emits matching results to Kafka, keyed by request id so results
// for the same request land on the same partition.
type Publisher struct {
	writer MessageWriter
	logger *log.Logger
	now    func() time.Time
}

func NewPublisher(broker, topic string, logger *log.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Publisher{writer: writer, logger: logger, now: time.Now}
}

// PublishResult wraps the result in an event envelope and writes it.
func (p *Publisher) PublishResult(ctx context.Context, result models.MatchResult) error {
	event := ResultEvent{
		EventID:     uuid.NewString(),
		CompletedAt: p.now().UTC(),
		Result:      result,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal result event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(result.RequestID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish result for %s: %w", result.RequestID, err)
	}
	p.logger.Printf("published result request=%s status=%s ranked=%d", result.RequestID, result.Status, len(result.Ranked))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
