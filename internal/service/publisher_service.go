package service

import (
	"context"
	"encoding/json"
	"log"

	"ideaforge-be/internal/dto"
	"ideaforge-be/pkg/generation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}

// attemptRecorder bridges the generation orchestrator's metrics hook to the
// in-process message bus. Publishing is best effort: a bus failure is logged
// and never reaches the orchestrator.
type attemptRecorder struct {
	publisher IPublisherService
}

func NewAttemptRecorder(publisher IPublisherService) generation.MetricsRecorder {
	return &attemptRecorder{publisher: publisher}
}

var _ generation.MetricsRecorder = &attemptRecorder{}

func (r *attemptRecorder) RecordAttempt(a generation.Attempt) {
	r.publish(dto.AttemptRecordMessage{
		Model:           a.Model,
		Ordinal:         a.Ordinal,
		RetryClass:      a.RetryClass,
		DurationSeconds: a.Elapsed.Seconds(),
		Success:         a.Success,
	})
}

func (r *attemptRecorder) RecordError(a generation.Attempt, err error) {
	record := dto.AttemptRecordMessage{
		Model:           a.Model,
		Ordinal:         a.Ordinal,
		RetryClass:      a.RetryClass,
		DurationSeconds: a.Elapsed.Seconds(),
	}
	if err != nil {
		record.Error = err.Error()
	}
	r.publish(record)
}

func (r *attemptRecorder) publish(record dto.AttemptRecordMessage) {
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := r.publisher.Publish(context.Background(), payload); err != nil {
		log.Printf("[WARN] Failed to publish attempt record for model %s: %v", record.Model, err)
	}
}
