package sink

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"pandump/envelope"
	"pandump/outbox"
)

// KafkaSink publishes envelopes to a crash topic, keyed by host so one
// host's reports stay ordered within a partition.
type KafkaSink struct {
	writer *kafka.Writer
	ser    envelope.Serializer
}

func NewKafka(brokers []string, topic string, ser envelope.Serializer) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		ser: ser,
	}
}

func (s *KafkaSink) Publish(ctx context.Context, rep *outbox.Report) error {
	blob, err := s.ser.Encode(rep)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rep.Host),
		Value: blob,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
