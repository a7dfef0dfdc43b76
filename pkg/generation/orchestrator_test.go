package generation

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"ideaforge-be/pkg/llm"
)

// scriptedProvider returns one scripted outcome per call, recording which
// model each call was routed to.
type scriptedProvider struct {
	script []scriptedCall
	calls  []string // model per call, in order
}

type scriptedCall struct {
	response string
	err      error
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	opts := &llm.Options{}
	for _, o := range options {
		o(opts)
	}
	p.calls = append(p.calls, opts.Model)

	if len(p.script) == 0 {
		return "", errors.New("scripted provider: script exhausted")
	}
	next := p.script[0]
	p.script = p.script[1:]
	return next.response, next.err
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.Generate(ctx, "", options...)
}

func newTestOrchestrator(p *scriptedProvider) (*Orchestrator, *[]time.Duration) {
	o := NewOrchestrator(p, nil, nil)
	slept := &[]time.Duration{}
	o.Sleep = func(d time.Duration) {
		*slept = append(*slept, d)
	}
	return o, slept
}

func TestGenerateValidFirstTry(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{response: `{"name": "Acme"}`},
	}}
	o, _ := newTestOrchestrator(p)

	value, err := o.Generate(context.Background(), "prompt", `{"name": string}`, []string{"model-a"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	obj, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("value type = %T, want map", value)
	}
	if obj["name"] != "Acme" {
		t.Errorf("name = %v, want Acme", obj["name"])
	}
	if len(p.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(p.calls))
	}
}

func TestGenerateStripsCodeFence(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{response: "```json\n{\"name\": \"Acme\"}\n```"},
	}}
	o, _ := newTestOrchestrator(p)

	value, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if value.(map[string]interface{})["name"] != "Acme" {
		t.Errorf("fenced JSON was not parsed: %v", value)
	}
}

func TestGenerateJSONRetrySameModelTwiceThenFallback(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{response: "not json at all"},
		{response: "still not json"},
		{response: "nope"},
		{response: `{"ok": true}`},
	}}
	o, _ := newTestOrchestrator(p)

	value, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if value == nil {
		t.Fatal("value is nil")
	}

	// Three calls on model-a (initial + 2 retries), then model-b.
	want := []string{"model-a", "model-a", "model-a", "model-b"}
	if len(p.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", p.calls, want)
	}
	for i := range want {
		if p.calls[i] != want[i] {
			t.Errorf("call %d routed to %s, want %s", i, p.calls[i], want[i])
		}
	}
}

func TestGenerateRateLimitAlwaysAdvances(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{err: &llm.RateLimitError{Model: "model-a", RetryAfter: 5 * time.Second}},
		{response: `{"ok": true}`},
	}}
	o, slept := newTestOrchestrator(p)

	_, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(*slept) != 1 || (*slept)[0] != 5*time.Second {
		t.Errorf("slept = %v, want [5s]", *slept)
	}
	want := []string{"model-a", "model-b"}
	for i := range want {
		if p.calls[i] != want[i] {
			t.Errorf("call %d routed to %s, want %s", i, p.calls[i], want[i])
		}
	}
}

func TestGenerateRateLimitDefaultDelay(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{err: &llm.RateLimitError{Model: "model-a"}}, // no RetryAfter
		{response: `{"ok": true}`},
	}}
	o, slept := newTestOrchestrator(p)

	if _, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != defaultRateLimitDelay {
		t.Errorf("slept = %v, want [%s]", *slept, defaultRateLimitDelay)
	}
}

func TestGenerateModelUnavailableAdvancesWithoutSleep(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{err: &llm.ModelUnavailableError{Model: "model-a", Reason: "retired"}},
		{response: `{"ok": true}`},
	}}
	o, slept := newTestOrchestrator(p)

	if _, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(*slept) != 0 {
		t.Errorf("slept = %v, want none", *slept)
	}
	if p.calls[1] != "model-b" {
		t.Errorf("second call routed to %s, want model-b", p.calls[1])
	}
}

func TestGenerateNetworkBackoffSequence(t *testing.T) {
	netErr := syscall.ECONNREFUSED

	p := &scriptedProvider{script: []scriptedCall{
		{err: netErr},
		{err: netErr},
		{err: netErr},
		{response: `{"ok": true}`},
	}}
	o, slept := newTestOrchestrator(p)

	if _, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	wantDelays := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*slept) != len(wantDelays) {
		t.Fatalf("slept = %v, want %v", *slept, wantDelays)
	}
	for i, d := range wantDelays {
		if (*slept)[i] != d {
			t.Errorf("backoff %d = %s, want %s", i, (*slept)[i], d)
		}
	}

	// All four calls stayed on the same model.
	for i, m := range p.calls {
		if m != "model-a" {
			t.Errorf("call %d routed to %s, want model-a", i, m)
		}
	}
}

func TestGenerateNetworkExhaustionAdvancesModel(t *testing.T) {
	netErr := syscall.ECONNRESET

	p := &scriptedProvider{script: []scriptedCall{
		{err: netErr},
		{err: netErr},
		{err: netErr},
		{err: netErr}, // fourth transient failure on model-a
		{response: `{"ok": true}`},
	}}
	o, _ := newTestOrchestrator(p)

	if _, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if p.calls[len(p.calls)-1] != "model-b" {
		t.Errorf("final call routed to %s, want model-b", p.calls[len(p.calls)-1])
	}
}

func TestGenerateQuotaExhausted(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{err: &llm.RateLimitError{Model: "model-a", RetryAfter: time.Second}},
		{err: &llm.ModelUnavailableError{Model: "model-b", Reason: "gone"}},
	}}
	o, _ := newTestOrchestrator(p)

	_, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("Generate() error = %v, want ErrQuotaExhausted", err)
	}
}

func TestGenerateTerminalProviderErrorStopsImmediately(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{err: errors.New("invalid api key")},
	}}
	o, _ := newTestOrchestrator(p)

	_, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"})

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Generate() error = %v, want *ProviderError", err)
	}
	if provErr.Model != "model-a" {
		t.Errorf("ProviderError.Model = %s, want model-a", provErr.Model)
	}
	if len(p.calls) != 1 {
		t.Errorf("calls = %d, want 1 (no fallback on terminal error)", len(p.calls))
	}
}

func TestGenerateRejectsScalarJSON(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{response: `"just a string"`},
		{response: `42`},
		{response: `true`},
	}}
	o, _ := newTestOrchestrator(p)

	// Scalars count as malformed: retried and finally exhausted.
	_, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a"})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("Generate() error = %v, want ErrQuotaExhausted", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "no fence",
			raw:  `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n```json\n{\"a\": 1}\n```\n ",
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.raw); got != tt.want {
				t.Errorf("StripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateExhaustsEveryModelOnMalformedOutput(t *testing.T) {
	var script []scriptedCall
	for i := 0; i < 9; i++ {
		script = append(script, scriptedCall{response: "garbage"})
	}
	p := &scriptedProvider{script: script}
	o, _ := newTestOrchestrator(p)

	_, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b", "model-c"})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("Generate() error = %v, want ErrQuotaExhausted", err)
	}
	// Three calls per model (initial + 2 retries), nothing beyond.
	if len(p.calls) != 9 {
		t.Errorf("calls = %d, want 9", len(p.calls))
	}
}

func TestGenerateRecordsAttemptOrdinalsAndRetryClasses(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{response: "not json"},
		{err: syscall.ECONNREFUSED},
		{err: &llm.RateLimitError{Model: "model-a", RetryAfter: time.Second}},
		{response: `{"ok": true}`},
	}}
	rec := &capturingRecorder{}
	o := NewOrchestrator(p, rec, nil)
	o.Sleep = func(time.Duration) {}

	if _, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a", "model-b"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(rec.attempts) != 4 {
		t.Fatalf("recorded attempts = %d, want 4", len(rec.attempts))
	}
	wantClasses := []string{RetryClassJSON, RetryClassNetwork, RetryClassRateLimit, ""}
	for i, a := range rec.attempts {
		if a.Ordinal != i+1 {
			t.Errorf("attempt %d ordinal = %d, want %d", i, a.Ordinal, i+1)
		}
		if a.RetryClass != wantClasses[i] {
			t.Errorf("attempt %d retry class = %q, want %q", i, a.RetryClass, wantClasses[i])
		}
	}
	if rec.attempts[0].Success {
		t.Error("malformed-JSON attempt recorded as success")
	}
	if !rec.attempts[3].Success {
		t.Error("final attempt not recorded as success")
	}
	if rec.attempts[3].Model != "model-b" {
		t.Errorf("final attempt model = %s, want model-b", rec.attempts[3].Model)
	}
}

func TestMetricsRecorderPanicIsContained(t *testing.T) {
	p := &scriptedProvider{script: []scriptedCall{
		{response: `{"ok": true}`},
	}}
	o := NewOrchestrator(p, panickyRecorder{}, nil)
	o.Sleep = func(time.Duration) {}

	if _, err := o.Generate(context.Background(), "prompt", "{}", []string{"model-a"}); err != nil {
		t.Fatalf("Generate() error = %v, recorder panic must not surface", err)
	}
}

type capturingRecorder struct {
	attempts []Attempt
}

func (r *capturingRecorder) RecordAttempt(a Attempt) { r.attempts = append(r.attempts, a) }
func (r *capturingRecorder) RecordError(a Attempt, err error) {
	r.attempts = append(r.attempts, a)
}

type panickyRecorder struct{}

func (panickyRecorder) RecordAttempt(Attempt)      { panic("boom") }
func (panickyRecorder) RecordError(Attempt, error) { panic("boom") }
