package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ideaforge-be/internal/constant"
	"ideaforge-be/internal/entity"

	"github.com/google/uuid"
)

// fakeStore keeps sessions in a map and counts saves.
type fakeStore struct {
	sessions map[uuid.UUID]*entity.IdeaSession
	saves    int
}

func newFakeStore(sessions ...*entity.IdeaSession) *fakeStore {
	s := &fakeStore{sessions: make(map[uuid.UUID]*entity.IdeaSession)}
	for _, sess := range sessions {
		s.sessions[sess.Id] = sess
	}
	return s
}

func (s *fakeStore) Find(ctx context.Context, id uuid.UUID) (*entity.IdeaSession, error) {
	return s.sessions[id], nil
}

func (s *fakeStore) Save(ctx context.Context, session *entity.IdeaSession) error {
	s.saves++
	s.sessions[session.Id] = session
	return nil
}

type stageRecord struct {
	stage  string
	module string
}

type recordingNotifier struct {
	records []stageRecord
}

func (n *recordingNotifier) Notify(ctx context.Context, session *entity.IdeaSession, stage string, module string) {
	n.records = append(n.records, stageRecord{stage: stage, module: module})
}

func newTestSession() *entity.IdeaSession {
	return &entity.IdeaSession{
		Id:         uuid.New(),
		UserId:     uuid.New(),
		Idea:       "An app that plans weekly meals from pantry photos",
		DomainHint: "consumer",
		Tone:       "playful",
		Status:     entity.SessionStatusCreated,
	}
}

func newPipelineRunner(store SessionStore, p *scriptedProvider, notifier ProgressNotifier) *Runner {
	o := NewOrchestrator(p, nil, nil)
	o.Sleep = func(d time.Duration) {}
	return NewRunner(store, o, []string{"model-a"}, notifier, nil)
}

func TestRunAllStepsSucceed(t *testing.T) {
	session := newTestSession()
	store := newFakeStore(session)
	notifier := &recordingNotifier{}
	p := &scriptedProvider{script: []scriptedCall{
		{response: `{"name": "MealSnap", "target_users": ["busy parents"], "core_features": ["pantry scan"]}`},
		{response: `{"brand_name": "MealSnap", "tagline": "dinner, solved"}`},
		{response: `{"market_size": "large", "trends": ["food waste reduction"]}`},
	}}

	runner := newPipelineRunner(store, p, notifier)
	result, err := runner.Run(context.Background(), session.Id)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != entity.SessionStatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
	for _, module := range constant.PipelineModules {
		if _, ok := result.Outputs[module]; !ok {
			t.Errorf("missing output for %s", module)
		}
	}

	saved := store.sessions[session.Id]
	if saved.CompletedAt == nil {
		t.Error("CompletedAt not set on completion")
	}
	if saved.LastError != "" {
		t.Errorf("LastError = %q, want empty", saved.LastError)
	}

	// Every step persisted individually: processing + 3 steps + completed.
	if store.saves != 5 {
		t.Errorf("saves = %d, want 5", store.saves)
	}

	wantStages := []string{StageStarted, StageStep, StageStep, StageStep, StageCompleted}
	if len(notifier.records) != len(wantStages) {
		t.Fatalf("notifications = %v, want stages %v", notifier.records, wantStages)
	}
	for i, want := range wantStages {
		if notifier.records[i].stage != want {
			t.Errorf("notification %d stage = %s, want %s", i, notifier.records[i].stage, want)
		}
	}
}

func TestRunDegradesToPartialKeepingEarlierOutputs(t *testing.T) {
	session := newTestSession()
	store := newFakeStore(session)
	p := &scriptedProvider{script: []scriptedCall{
		{response: `{"name": "MealSnap", "target_users": ["busy parents"], "core_features": ["pantry scan"]}`},
		{err: errors.New("invalid api key")}, // terminal on step 2
	}}

	runner := newPipelineRunner(store, p, nil)
	result, err := runner.Run(context.Background(), session.Id)
	if err != nil {
		t.Fatalf("Run() error = %v, partial outcome must not be an error", err)
	}

	if result.Status != entity.SessionStatusPartial {
		t.Errorf("status = %s, want partial", result.Status)
	}
	if _, ok := result.Outputs[constant.ModuleRefinedConcept]; !ok {
		t.Error("step-1 output missing from partial result")
	}
	if _, ok := result.Outputs[constant.ModuleBrandProfile]; ok {
		t.Error("failed step must not have an output")
	}
	if result.Error == "" {
		t.Error("partial result must carry the failure message")
	}

	saved := store.sessions[session.Id]
	if saved.Status != entity.SessionStatusPartial {
		t.Errorf("persisted status = %s, want partial", saved.Status)
	}
	if saved.CompletedAt != nil {
		t.Error("CompletedAt must stay nil for a partial run")
	}
}

func TestRunQuotaExhaustionIsPartialToo(t *testing.T) {
	session := newTestSession()
	store := newFakeStore(session)
	// Exhausting every model on the first step leaves zero outputs but the
	// run still degrades rather than erroring.
	provider := &scriptedProvider{script: []scriptedCall{
		{response: "garbage"},
		{response: "garbage"},
		{response: "garbage"},
	}}
	runner := newPipelineRunner(store, provider, nil)

	result, err := runner.Run(context.Background(), session.Id)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != entity.SessionStatusPartial {
		t.Errorf("status = %s, want partial", result.Status)
	}
	if len(result.Outputs) != 0 {
		t.Errorf("outputs = %v, want none", result.Outputs)
	}
	if !errorsContains(result.Error, "exhausted") {
		t.Errorf("error = %q, want exhaustion message", result.Error)
	}
}

func TestApplyConceptDefaults(t *testing.T) {
	concept := map[string]interface{}{
		"name":          "MealSnap",
		"target_users":  []interface{}{},
		"core_features": []interface{}{"pantry scan"},
	}

	patched := ApplyConceptDefaults(concept).(map[string]interface{})

	users, ok := patched["target_users"].([]interface{})
	if !ok || len(users) == 0 {
		t.Error("empty target_users was not defaulted")
	}
	features := patched["core_features"].([]interface{})
	if len(features) != 1 || features[0] != "pantry scan" {
		t.Errorf("populated core_features must stay untouched, got %v", features)
	}
}

func TestMarkCompletedSetsCompletedAtOnce(t *testing.T) {
	session := newTestSession()

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session.MarkCompleted(first)
	if session.CompletedAt == nil || !session.CompletedAt.Equal(first) {
		t.Fatalf("CompletedAt = %v, want %v", session.CompletedAt, first)
	}

	second := first.Add(time.Hour)
	session.MarkCompleted(second)
	if !session.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt changed on re-completion: %v", session.CompletedAt)
	}
}

func TestRegenerateUnknownModule(t *testing.T) {
	session := newTestSession()
	store := newFakeStore(session)
	runner := newPipelineRunner(store, &scriptedProvider{}, nil)

	_, err := runner.Regenerate(context.Background(), session.Id, "tea_leaves")
	if !errors.Is(err, ErrInvalidModule) {
		t.Fatalf("Regenerate() error = %v, want ErrInvalidModule", err)
	}
}

func TestRegenerateRequiresConceptContext(t *testing.T) {
	session := newTestSession() // no outputs yet
	store := newFakeStore(session)
	runner := newPipelineRunner(store, &scriptedProvider{}, nil)

	_, err := runner.Regenerate(context.Background(), session.Id, constant.ModulePitchDeck)
	if !errors.Is(err, ErrMissingContext) {
		t.Fatalf("Regenerate() error = %v, want ErrMissingContext", err)
	}
}

func TestRegenerateReplacesOnlyTargetModule(t *testing.T) {
	session := newTestSession()
	session.SetOutput(constant.ModuleRefinedConcept, map[string]interface{}{"name": "MealSnap"})
	session.SetOutput(constant.ModuleBrandProfile, map[string]interface{}{"brand_name": "Old Brand"})
	session.LastError = "previous failure"
	store := newFakeStore(session)

	p := &scriptedProvider{script: []scriptedCall{
		{response: `{"slides": [{"title": "Problem", "bullets": ["waste"]}]}`},
	}}
	runner := newPipelineRunner(store, p, nil)

	result, err := runner.Regenerate(context.Background(), session.Id, constant.ModulePitchDeck)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if result.Module != constant.ModulePitchDeck {
		t.Errorf("module = %s, want pitch_deck", result.Module)
	}

	saved := store.sessions[session.Id]
	if !saved.HasOutput(constant.ModulePitchDeck) {
		t.Error("regenerated module missing from session")
	}
	brand := saved.Outputs[constant.ModuleBrandProfile].(map[string]interface{})
	if brand["brand_name"] != "Old Brand" {
		t.Error("untouched module was modified")
	}
	if saved.LastError != "" {
		t.Errorf("LastError = %q, want cleared after successful regeneration", saved.LastError)
	}
	if saved.Status != entity.SessionStatusCreated {
		t.Errorf("status = %s, regeneration must not touch status", saved.Status)
	}
}

func TestRegenerateFailureLeavesSessionUntouched(t *testing.T) {
	session := newTestSession()
	session.SetOutput(constant.ModuleRefinedConcept, map[string]interface{}{"name": "MealSnap"})
	session.SetOutput(constant.ModuleMarketAnalysis, map[string]interface{}{"market_size": "large"})
	store := newFakeStore(session)

	p := &scriptedProvider{script: []scriptedCall{
		{err: errors.New("invalid api key")},
	}}
	runner := newPipelineRunner(store, p, nil)

	_, err := runner.Regenerate(context.Background(), session.Id, constant.ModuleMarketAnalysis)
	if err == nil {
		t.Fatal("Regenerate() must surface the generation failure")
	}

	saved := store.sessions[session.Id]
	market := saved.Outputs[constant.ModuleMarketAnalysis].(map[string]interface{})
	if market["market_size"] != "large" {
		t.Error("prior output was replaced despite failure")
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 on failed regeneration", store.saves)
	}
}

func TestRunPanickyNotifierDoesNotAbort(t *testing.T) {
	session := newTestSession()
	store := newFakeStore(session)
	p := &scriptedProvider{script: []scriptedCall{
		{response: `{"name": "MealSnap", "target_users": ["x"], "core_features": ["y"]}`},
		{response: `{"brand_name": "MealSnap"}`},
		{response: `{"market_size": "large"}`},
	}}

	o := NewOrchestrator(p, nil, nil)
	o.Sleep = func(d time.Duration) {}
	runner := NewRunner(store, o, []string{"model-a"}, panicNotifier{}, nil)

	result, err := runner.Run(context.Background(), session.Id)
	if err != nil {
		t.Fatalf("Run() error = %v, notifier panic must not surface", err)
	}
	if result.Status != entity.SessionStatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
}

type panicNotifier struct{}

func (panicNotifier) Notify(context.Context, *entity.IdeaSession, string, string) {
	panic("notifier down")
}

func errorsContains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
