package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// MessageWriter is the subset of *kafka.Writer the sink needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaSink struct {
	Writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

func (s *KafkaSink) Write(ctx context.Context, a Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(a.ActorID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(a.Action)},
		},
	}
	if err := s.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.Writer.Close()
}
