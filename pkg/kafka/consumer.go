package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads one topic with a single reader loop and dispatches each
// message to a registered handler. Failed messages are logged and skipped;
// the next tick of the upstream producer is the only retry mechanism.
type Consumer struct {
	cfg     *ConsumerConfig
	handler MessageHandler
	reader  *kafka.Reader

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer creates a Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		MinBytes: 1,
		MaxBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("group id is required")
	}
	return &Consumer{cfg: cfg}, nil
}

// RegisterHandler sets the handler for the consumed topic.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	c.handler = h
}

// Start begins consuming. It returns immediately; the read loop runs until
// Stop is called.
func (c *Consumer) Start() error {
	if c.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    c.handler.Topic(),
		MinBytes: c.cfg.MinBytes,
		MaxBytes: c.cfg.MaxBytes,
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			m, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				log.Printf("kafka consumer: read error: %v", err)
				continue
			}
			if err := c.handler.Handle(ctx, m.Value); err != nil {
				log.Printf("kafka consumer: handle error topic=%s offset=%d: %v",
					m.Topic, m.Offset, err)
			}
		}
	}()

	return nil
}

// Stop cancels the read loop and closes the reader.
func (c *Consumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
