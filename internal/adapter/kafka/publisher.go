package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/greencell/hydrozone/internal/config"
	"github.com/greencell/hydrozone/internal/domain"
)

// Publisher produces zone predictions to a Kafka topic.
// It implements serving.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes and publishes predictions to the sink topic in a
// single WriteMessages call.
func (p *Publisher) PublishBatch(ctx context.Context, preds []domain.Prediction) error {
	if len(preds) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(preds))
	for i := range preds {
		msg, err := serializeToMessage(preds[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Prediction into a Kafka message keyed by its
// coordinate pair.
func serializeToMessage(pred domain.Prediction) (kafkago.Message, error) {
	data, err := json.Marshal(pred)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction: %w", err)
	}
	key := strconv.FormatFloat(pred.Lat, 'g', -1, 64) + "," + strconv.FormatFloat(pred.Lng, 'g', -1, 64)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "zone", Value: []byte(pred.Zone)},
			{Key: "predicted_at", Value: []byte(pred.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
