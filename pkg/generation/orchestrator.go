package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ideaforge-be/pkg/llm"
)

const (
	maxJSONRetries    = 2
	maxNetworkRetries = 3

	networkBackoffBase    = 2 * time.Second
	defaultRateLimitDelay = 20 * time.Second
)

// attemptState drives the fallback loop. Keeping it an explicit struct makes
// termination checkable: every branch either returns, increments a bounded
// counter, or advances modelIndex.
type attemptState struct {
	modelIndex     int
	jsonRetries    int
	networkRetries int
}

// advanceModel moves to the next fallback tier. Both per-model counters reset
// on every advance, whatever caused it.
func (s *attemptState) advanceModel() {
	s.modelIndex++
	s.jsonRetries = 0
	s.networkRetries = 0
}

// Orchestrator turns one logical prompt into a parsed structured value by
// driving the provider through an ordered list of fallback models.
//
// Worst case latency per call is bounded: each model can absorb at most
// 3 network backoffs (2s+4s+8s) and one rate-limit sleep (provider delay,
// default 20s) before the next model is tried, so the total is a finite sum
// over the configured model list plus per-call latencies.
type Orchestrator struct {
	provider llm.LLMProvider
	metrics  MetricsRecorder
	logger   *log.Logger

	// Sleep is swapped out in tests to observe backoff without waiting.
	Sleep func(time.Duration)
}

func NewOrchestrator(provider llm.LLMProvider, metrics MetricsRecorder, logger *log.Logger) *Orchestrator {
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	return &Orchestrator{
		provider: provider,
		metrics:  metrics,
		logger:   logger,
		Sleep:    time.Sleep,
	}
}

// Generate asks the provider for a JSON document matching the schema
// description and returns the parsed value. Transient failures (malformed
// JSON, rate limits, unavailable models, network blips) are absorbed here;
// only ErrQuotaExhausted and *ProviderError escape to the caller.
func (o *Orchestrator) Generate(ctx context.Context, prompt, schema string, models []string) (interface{}, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("generate: no models configured")
	}

	fullPrompt := composePrompt(prompt, schema)

	// Hard bound: per model a call either fails at transport (network
	// counter) or returns unparseable text (json counter), so no model can
	// see more than maxNetworkRetries+maxJSONRetries+1 calls.
	maxIterations := len(models) * (maxNetworkRetries + maxJSONRetries + 2)

	state := attemptState{}
	ordinal := 0

	for i := 0; i < maxIterations; i++ {
		if state.modelIndex >= len(models) {
			break
		}
		model := models[state.modelIndex]
		ordinal++

		start := time.Now()
		raw, err := o.provider.Generate(ctx, fullPrompt, llm.WithModel(model))
		attempt := Attempt{Model: model, Ordinal: ordinal, Elapsed: time.Since(start)}

		if err != nil {
			retryClass, terminal := o.handleProviderFailure(&state, model, err)
			attempt.RetryClass = retryClass
			safeRecordError(o.metrics, attempt, err)
			if terminal != nil {
				return nil, terminal
			}
			continue
		}

		parsed, parseErr := parseStructured(raw)
		attempt.Success = parseErr == nil

		if parseErr != nil {
			if state.jsonRetries < maxJSONRetries {
				state.jsonRetries++
				attempt.RetryClass = RetryClassJSON
				o.logf("malformed JSON from %s, retry %d/%d on same model", model, state.jsonRetries, maxJSONRetries)
			} else {
				attempt.RetryClass = RetryClassModelFallback
				o.logf("malformed JSON from %s, retries exhausted, falling back", model)
				state.advanceModel()
			}
			safeRecordAttempt(o.metrics, attempt)
			continue
		}

		safeRecordAttempt(o.metrics, attempt)
		return parsed, nil
	}

	return nil, ErrQuotaExhausted
}

// handleProviderFailure applies the retry taxonomy for a failed provider
// call. It mutates state for retryable classes, reporting the retry class it
// applied, and returns a non-nil error only for the terminal ProviderError
// class.
func (o *Orchestrator) handleProviderFailure(state *attemptState, model string, err error) (string, error) {
	var rateErr *llm.RateLimitError
	if errors.As(err, &rateErr) {
		delay := rateErr.RetryAfter
		if delay <= 0 {
			delay = defaultRateLimitDelay
		}
		// A rate limit is a model-level signal: always rotate, never
		// retry the same model for this cause.
		o.logf("rate limited on %s, sleeping %s then advancing model", model, delay)
		o.Sleep(delay)
		state.advanceModel()
		return RetryClassRateLimit, nil
	}

	var unavailableErr *llm.ModelUnavailableError
	if errors.As(err, &unavailableErr) {
		o.logf("model %s unavailable, advancing model", model)
		state.advanceModel()
		return RetryClassModelFallback, nil
	}

	if llm.IsNetworkTransient(err) {
		if state.networkRetries < maxNetworkRetries {
			delay := networkBackoffBase << state.networkRetries // 2s, 4s, 8s
			state.networkRetries++
			o.logf("network failure on %s (%v), retry %d/%d after %s", model, err, state.networkRetries, maxNetworkRetries, delay)
			o.Sleep(delay)
			return RetryClassNetwork, nil
		}
		o.logf("network retries exhausted on %s, advancing model", model)
		state.advanceModel()
		return RetryClassModelFallback, nil
	}

	return "", &ProviderError{Model: model, Err: err}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}

func composePrompt(prompt, schema string) string {
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nReturn ONLY valid JSON matching this schema, with no markdown and no commentary:\n")
	sb.WriteString(schema)
	return sb.String()
}

// parseStructured strips an optional markdown code fence and decodes the
// remainder as JSON.
func parseStructured(raw string) (interface{}, error) {
	cleaned := StripCodeFence(raw)
	var value interface{}
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, fmt.Errorf("parse structured response: %w", err)
	}
	switch value.(type) {
	case map[string]interface{}, []interface{}:
		return value, nil
	default:
		return nil, fmt.Errorf("structured response is not an object or array")
	}
}

// StripCodeFence removes a surrounding markdown fence (``` or ```json) when
// the response starts with one. Models add these despite instructions.
func StripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
