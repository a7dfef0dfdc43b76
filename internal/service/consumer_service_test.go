package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ideaforge-be/pkg/generation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
}

func TestAttemptRecordsAggregatePerModel(t *testing.T) {
	pubSub := newTestBus()
	topic := "TEST_ATTEMPTS"

	consumer := NewConsumerService(pubSub, topic)
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(topic, pubSub)
	recorder := NewAttemptRecorder(publisher)

	recorder.RecordAttempt(generation.Attempt{Model: "model-a", Ordinal: 1, Elapsed: 2 * time.Second, Success: true})
	recorder.RecordAttempt(generation.Attempt{Model: "model-a", Ordinal: 2, RetryClass: generation.RetryClassJSON, Elapsed: 1 * time.Second})
	recorder.RecordAttempt(generation.Attempt{Model: "model-b", Ordinal: 3, Elapsed: 500 * time.Millisecond, Success: true})
	recorder.RecordError(generation.Attempt{Model: "model-a", Ordinal: 4, RetryClass: generation.RetryClassNetwork}, errors.New("connection refused"))

	assert.Eventually(t, func() bool {
		stats := consumer.Stats()
		if len(stats.Models) != 2 {
			return false
		}
		a := stats.Models[0] // sorted by name
		return a.Model == "model-a" && a.Attempts == 2 && a.Successes == 1 && a.Errors == 1
	}, 2*time.Second, 20*time.Millisecond, "attempt records not aggregated in time")

	stats := consumer.Stats()
	b := stats.Models[1]
	assert.Equal(t, "model-b", b.Model)
	assert.EqualValues(t, 1, b.Attempts)
	assert.EqualValues(t, 1, b.Successes)
	assert.EqualValues(t, 0, b.Errors)
	assert.InDelta(t, 0.5, b.TotalDuration, 0.001)

	a := stats.Models[0]
	assert.InDelta(t, 3.0, a.TotalDuration, 0.001)
}

func TestStatsEmptyBeforeAnyAttempt(t *testing.T) {
	consumer := NewConsumerService(newTestBus(), "EMPTY_TOPIC")

	stats := consumer.Stats()
	assert.NotNil(t, stats)
	assert.Empty(t, stats.Models)
}

func TestInvalidPayloadIsSkipped(t *testing.T) {
	pubSub := newTestBus()
	topic := "BAD_PAYLOADS"

	consumer := NewConsumerService(pubSub, topic)
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(topic, pubSub)
	require.NoError(t, publisher.Publish(context.Background(), []byte("not json")))

	recorder := NewAttemptRecorder(publisher)
	recorder.RecordAttempt(generation.Attempt{Model: "model-a", Ordinal: 1, Elapsed: time.Second, Success: true})

	assert.Eventually(t, func() bool {
		stats := consumer.Stats()
		return len(stats.Models) == 1 && stats.Models[0].Attempts == 1
	}, 2*time.Second, 20*time.Millisecond, "valid record after an invalid one was not processed")
}
