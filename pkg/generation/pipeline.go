package generation

import (
	"context"
	"fmt"
	"log"
	"time"

	"ideaforge-be/internal/constant"
	"ideaforge-be/internal/entity"

	"github.com/google/uuid"
)

// SessionStore is the persistence port the pipeline depends on. Both calls
// are atomic-per-call; writes from one pipeline run are applied in the order
// issued.
type SessionStore interface {
	Find(ctx context.Context, id uuid.UUID) (*entity.IdeaSession, error)
	Save(ctx context.Context, session *entity.IdeaSession) error
}

// ProgressNotifier observes per-step progress. Fire-and-forget: failures and
// panics inside a notifier never affect the pipeline.
type ProgressNotifier interface {
	Notify(ctx context.Context, session *entity.IdeaSession, stage string, module string)
}

// Progress stages passed to the notifier.
const (
	StageStarted   = "started"
	StageStep      = "step_completed"
	StageCompleted = "completed"
	StagePartial   = "partial"

	// StageRegenerated marks a single-module replacement outside the
	// pipeline run.
	StageRegenerated = "module_regenerated"
)

// PipelineResult is what a run hands back: everything that succeeded, the
// final status, and the failure message when the run degraded to partial.
type PipelineResult struct {
	SessionId uuid.UUID              `json:"session_id"`
	Status    entity.SessionStatus   `json:"status"`
	Outputs   map[string]interface{} `json:"outputs"`
	Error     string                 `json:"error,omitempty"`
}

// Runner sequences the mandatory generation steps (concept, brand, market)
// for one session, persisting after every step so pollers can observe
// progress mid-pipeline. A step's terminal failure degrades the run to a
// partial result instead of an error: earlier outputs are never discarded.
type Runner struct {
	store    SessionStore
	orch     *Orchestrator
	models   []string
	notifier ProgressNotifier
	logger   *log.Logger
}

func NewRunner(store SessionStore, orch *Orchestrator, models []string, notifier ProgressNotifier, logger *log.Logger) *Runner {
	return &Runner{
		store:    store,
		orch:     orch,
		models:   models,
		notifier: notifier,
		logger:   logger,
	}
}

func (r *Runner) Run(ctx context.Context, sessionID uuid.UUID) (*PipelineResult, error) {
	session, err := r.store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("idea session %s not found", sessionID)
	}

	session.Status = entity.SessionStatusProcessing
	if err := r.store.Save(ctx, session); err != nil {
		return nil, err
	}
	r.notify(ctx, session, StageStarted, "")

	for _, module := range constant.PipelineModules {
		value, genErr := r.orch.Generate(ctx, ModulePrompt(module, session), SchemaFor(module), r.models)
		if genErr != nil {
			// Degrade, don't fail: whatever already succeeded is
			// kept and returned alongside the error message.
			session.Status = entity.SessionStatusPartial
			session.LastError = genErr.Error()
			if saveErr := r.store.Save(ctx, session); saveErr != nil {
				r.logf("failed to persist partial state for %s: %v", session.Id, saveErr)
			}
			r.notify(ctx, session, StagePartial, module)
			return r.resultOf(session), nil
		}

		if module == constant.ModuleRefinedConcept {
			value = ApplyConceptDefaults(value)
		}
		session.SetOutput(module, value)

		// Persist per step, not batched, so progress is observable.
		if err := r.store.Save(ctx, session); err != nil {
			return nil, err
		}
		r.notify(ctx, session, StageStep, module)
	}

	session.MarkCompleted(time.Now())
	session.LastError = ""
	if err := r.store.Save(ctx, session); err != nil {
		return nil, err
	}
	r.notify(ctx, session, StageCompleted, "")

	return r.resultOf(session), nil
}

func (r *Runner) resultOf(session *entity.IdeaSession) *PipelineResult {
	return &PipelineResult{
		SessionId: session.Id,
		Status:    session.Status,
		Outputs:   session.Outputs,
		Error:     session.LastError,
	}
}

func (r *Runner) notify(ctx context.Context, session *entity.IdeaSession, stage, module string) {
	if r.notifier == nil {
		return
	}
	defer func() { _ = recover() }()
	r.notifier.Notify(ctx, session, stage, module)
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

// Placeholder values patched into a refined concept that came back without
// the required non-empty lists. A provider schema-compliance gap must never
// abort the pipeline.
var (
	defaultTargetUsers = []interface{}{
		"early adopters in the target niche",
		"small teams evaluating new tools",
	}
	defaultCoreFeatures = []interface{}{
		"core workflow",
		"simple onboarding",
		"usage dashboard",
	}
)

// ApplyConceptDefaults fills in target_users and core_features when the
// generated concept omits them or returns empty lists.
func ApplyConceptDefaults(value interface{}) interface{} {
	concept, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	if !hasNonEmptyList(concept, "target_users") {
		concept["target_users"] = defaultTargetUsers
	}
	if !hasNonEmptyList(concept, "core_features") {
		concept["core_features"] = defaultCoreFeatures
	}
	return concept
}

func hasNonEmptyList(m map[string]interface{}, key string) bool {
	list, ok := m[key].([]interface{})
	return ok && len(list) > 0
}
