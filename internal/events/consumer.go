package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"homecare/models"
)

// MessageReader is the subset of the kafka-go Reader the consumer relies on.
// Declared as an interface so tests can inject a mock.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads matching requests from Kafka and hands them to the caller
// over a channel. Offsets are committed manually, after a request has been
// fully processed, so a crash mid-request replays it.
type Consumer struct {
	reader      MessageReader
	logger      *log.Logger
	doneChan    chan struct{}
	messageChan chan kafka.Message
	wg          sync.WaitGroup
}

func NewConsumer(broker, topic, groupID string, logger *log.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Commit only after the matching result is published.
		CommitInterval: 0,
		MinBytes:       10e3,
		MaxBytes:       10e6,
	})
	return &Consumer{
		reader:      reader,
		logger:      logger,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}
}

// Messages returns the channel the consumption loop feeds. The channel is
// closed when the loop stops.
func (c *Consumer) Messages() <-chan kafka.Message {
	return c.messageChan
}

// CommitOffset marks a message as processed.
func (c *Consumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	c.logger.Printf("committing offset topic=%s partition=%d offset=%d", msg.Topic, msg.Partition, msg.Offset)
	return c.reader.CommitMessages(ctx, msg)
}

// Start begins the consumption loop in its own goroutine.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.messageChan)

		c.logger.Println("request consumer loop started")

		for {
			select {
			case <-ctx.Done():
				c.logger.Println("context canceled, stopping request consumer")
				return
			case <-c.doneChan:
				c.logger.Println("shutdown signal, stopping request consumer")
				return
			default:
				msg, err := c.reader.ReadMessage(ctx)
				if err != nil {
					if err.Error() == "kafka: reader closed" {
						return
					}
					c.logger.Printf("read message: %v", err)
					// Back off so a broker outage does not spin the loop.
					time.Sleep(time.Second)
					continue
				}

				select {
				case c.messageChan <- msg:
				case <-ctx.Done():
					return
				case <-c.doneChan:
					return
				}
			}
		}
	}()
}

// Stop shuts down the consumption loop and the underlying reader.
func (c *Consumer) Stop() {
	close(c.doneChan)
	c.wg.Wait()
	if err := c.reader.Close(); err != nil {
		c.logger.Printf("close reader: %v", err)
	}
	c.logger.Println("request consumer stopped")
}

// DecodeRequest parses a matching request payload.
func DecodeRequest(payload []byte) (models.MatchRequest, error) {
	var req models.MatchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return models.MatchRequest{}, fmt.Errorf("decode match request: %w", err)
	}
	if req.RequestID == "" {
		return models.MatchRequest{}, fmt.Errorf("match request has no request_id")
	}
	return req, nil
}
