//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/greencell/hydrozone/internal/adapter/kafka"
	"github.com/greencell/hydrozone/internal/config"
	"github.com/greencell/hydrozone/internal/domain"
)

const testSinkTopic = "test-zone-predictions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka broker in a container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublisherRoundTrip verifies that published predictions arrive on the sink
// topic with the expected key, headers, and payload.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	preds := []domain.Prediction{
		{
			Lat:        40.5,
			Lng:        -100.25,
			Efficiency: 0.812,
			Cost:       1.97,
			Zone:       domain.ZoneGreen,
			Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			Lat:        10,
			Lng:        10,
			Efficiency: 0.45,
			Cost:       3.4,
			Zone:       domain.ZoneRed,
			Timestamp:  time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
		},
	}

	pub := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	require.NoError(t, pub.PublishBatch(ctx, preds))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]kafkago.Message, 0, len(preds))
	for len(received) < len(preds) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")
		received = append(received, msg)
	}

	require.Len(t, received, 2)
	assert.Equal(t, "40.5,-100.25", string(received[0].Key))

	headers := make(map[string]string, len(received[0].Headers))
	for _, h := range received[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "green", headers["zone"])
	_, err := time.Parse(time.RFC3339, headers["predicted_at"])
	assert.NoError(t, err, "predicted_at should be valid RFC3339")

	var got domain.Prediction
	require.NoError(t, json.Unmarshal(received[0].Value, &got))
	assert.Equal(t, preds[0], got)

	assert.Equal(t, "10,10", string(received[1].Key))
	var second domain.Prediction
	require.NoError(t, json.Unmarshal(received[1].Value, &second))
	assert.Equal(t, domain.ZoneRed, second.Zone)
}
