package dto

import (
	"github.com/google/uuid"
)

type RunPipelineResponse struct {
	SessionId uuid.UUID              `json:"session_id"`
	Status    string                 `json:"status"`
	Outputs   map[string]interface{} `json:"outputs"`
	Error     string                 `json:"error,omitempty"`
}

type RegenerateModuleRequest struct {
	Module string `json:"module" validate:"required"`
}

type RegenerateModuleResponse struct {
	SessionId uuid.UUID   `json:"session_id"`
	Module    string      `json:"module"`
	Value     interface{} `json:"value"`
}

type ProgressResponse struct {
	SessionId        uuid.UUID `json:"session_id"`
	Status           string    `json:"status"`
	CompletedModules []string  `json:"completed_modules"`
	// Stage is the live pipeline stage from the progress cache, empty when
	// no run is in flight or the cache entry expired.
	Stage     string `json:"stage,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// ModelStats is one model's aggregated attempt counters from the metrics
// consumer.
type ModelStats struct {
	Model         string  `json:"model"`
	Attempts      int64   `json:"attempts"`
	Successes     int64   `json:"successes"`
	Errors        int64   `json:"errors"`
	TotalDuration float64 `json:"total_duration_seconds"`
}

type GenerationStatsResponse struct {
	Models []ModelStats `json:"models"`
}

// ProgressUpdateMessage is what connected websocket clients receive as a
// generation run advances.
type ProgressUpdateMessage struct {
	SessionId uuid.UUID `json:"session_id"`
	Stage     string    `json:"stage"`
	Module    string    `json:"module,omitempty"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// AttemptRecordMessage is the watermill payload carrying one provider
// attempt outcome from the orchestrator to the metrics consumer. Ordinal is
// the attempt's 1-based position within its generation; RetryClass names the
// recovery the orchestrator applied after it, empty when none followed.
type AttemptRecordMessage struct {
	Model           string  `json:"model"`
	Ordinal         int     `json:"ordinal"`
	RetryClass      string  `json:"retry_class,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
}
