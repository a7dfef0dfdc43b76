package generation

import (
	"context"
	"fmt"

	"ideaforge-be/internal/constant"

	"github.com/google/uuid"
)

// RegenerateResult carries the single replaced module output.
type RegenerateResult struct {
	SessionId uuid.UUID   `json:"session_id"`
	Module    string      `json:"module"`
	Value     interface{} `json:"value"`
}

// Regenerate re-runs exactly one module using the persisted refined concept
// as context. On success only that module's output is replaced and the
// session's error is cleared; on failure nothing is mutated and the error is
// reported to the caller. Session status is never touched here.
func (r *Runner) Regenerate(ctx context.Context, sessionID uuid.UUID, module string) (*RegenerateResult, error) {
	if !IsKnownModule(module) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModule, module)
	}

	session, err := r.store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("idea session %s not found", sessionID)
	}

	// Every module except the concept itself needs the concept as context.
	if module != constant.ModuleRefinedConcept && !session.HasOutput(constant.ModuleRefinedConcept) {
		return nil, fmt.Errorf("%w: %s requires %s", ErrMissingContext, module, constant.ModuleRefinedConcept)
	}

	value, err := r.orch.Generate(ctx, ModulePrompt(module, session), SchemaFor(module), r.models)
	if err != nil {
		// Prior output stays untouched; the caller sees the failure.
		return nil, err
	}

	if module == constant.ModuleRefinedConcept {
		value = ApplyConceptDefaults(value)
	}
	session.SetOutput(module, value)
	session.LastError = ""
	if err := r.store.Save(ctx, session); err != nil {
		return nil, err
	}
	r.notify(ctx, session, StageRegenerated, module)

	return &RegenerateResult{
		SessionId: session.Id,
		Module:    module,
		Value:     value,
	}, nil
}
