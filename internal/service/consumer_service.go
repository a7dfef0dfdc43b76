package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"

	"ideaforge-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains generation attempt records from the in-process bus
// and keeps per-model counters for the stats endpoint.
type IConsumerService interface {
	Consume(ctx context.Context) error
	Stats() *dto.GenerationStatsResponse
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string

	mu     sync.RWMutex
	counts map[string]*dto.ModelStats
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		counts:    make(map[string]*dto.ModelStats),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var record dto.AttemptRecordMessage
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		log.Printf("[ERROR] Failed to unmarshal attempt record: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.mu.Lock()
	stats, ok := cs.counts[record.Model]
	if !ok {
		stats = &dto.ModelStats{Model: record.Model}
		cs.counts[record.Model] = stats
	}
	if record.Error != "" {
		stats.Errors++
	} else {
		stats.Attempts++
		stats.TotalDuration += record.DurationSeconds
		if record.Success {
			stats.Successes++
		}
	}
	cs.mu.Unlock()

	msg.Ack()
}

// Stats snapshots the counters, sorted by model name for stable output.
func (cs *consumerService) Stats() *dto.GenerationStatsResponse {
	cs.mu.RLock()
	models := make([]dto.ModelStats, 0, len(cs.counts))
	for _, s := range cs.counts {
		models = append(models, *s)
	}
	cs.mu.RUnlock()

	sort.Slice(models, func(i, j int) bool {
		return models[i].Model < models[j].Model
	})

	return &dto.GenerationStatsResponse{Models: models}
}
