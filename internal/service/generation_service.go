package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ideaforge-be/internal/constant"
	"ideaforge-be/internal/dto"
	"ideaforge-be/internal/entity"
	"ideaforge-be/internal/pkg/serverutils"
	"ideaforge-be/internal/repository/specification"
	"ideaforge-be/internal/repository/unitofwork"
	"ideaforge-be/pkg/events"
	"ideaforge-be/pkg/generation"
	"ideaforge-be/pkg/llm"
	pktNats "ideaforge-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// progressKeyTTL bounds how long a stale progress entry can linger after a
// crashed run.
const progressKeyTTL = 10 * time.Minute

func progressKey(sessionID uuid.UUID) string {
	return "progress:" + sessionID.String()
}

type IGenerationService interface {
	RunPipeline(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.RunPipelineResponse, error)
	Regenerate(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RegenerateModuleRequest) (*dto.RegenerateModuleResponse, error)
	GetProgress(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ProgressResponse, error)
	GetStats(ctx context.Context) (*dto.GenerationStatsResponse, error)
}

type generationService struct {
	uowFactory      unitofwork.RepositoryFactory
	runner          *generation.Runner
	consumerService IConsumerService
	rdb             *redis.Client
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	models []string,
	metrics generation.MetricsRecorder,
	eventPublisher *pktNats.Publisher,
	rdb *redis.Client,
	consumerService IConsumerService,
) IGenerationService {
	llmLogger := initLLMLogger()

	store := &uowSessionStore{uowFactory: uowFactory}
	notifier := &eventNotifier{publisher: eventPublisher, rdb: rdb}
	orch := generation.NewOrchestrator(llmProvider, metrics, llmLogger)
	runner := generation.NewRunner(store, orch, models, notifier, llmLogger)

	return &generationService{
		uowFactory:      uowFactory,
		runner:          runner,
		consumerService: consumerService,
		rdb:             rdb,
	}
}

// initLLMLogger writes provider traffic to a dedicated file so the main app
// log stays readable. Falls back to stdout when the file cannot be opened.
func initLLMLogger() *log.Logger {
	logPath := filepath.Join("logs", "llm.log")
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (gs *generationService) RunPipeline(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.RunPipelineResponse, error) {
	if _, err := gs.ownedSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	result, err := gs.runner.Run(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	return &dto.RunPipelineResponse{
		SessionId: result.SessionId,
		Status:    string(result.Status),
		Outputs:   result.Outputs,
		Error:     result.Error,
	}, nil
}

func (gs *generationService) Regenerate(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RegenerateModuleRequest) (*dto.RegenerateModuleResponse, error) {
	if _, err := gs.ownedSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	result, err := gs.runner.Regenerate(ctx, sessionId, req.Module)
	if err != nil {
		return nil, err
	}

	return &dto.RegenerateModuleResponse{
		SessionId: result.SessionId,
		Module:    result.Module,
		Value:     result.Value,
	}, nil
}

func (gs *generationService) GetProgress(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ProgressResponse, error) {
	session, err := gs.ownedSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	// Stable module order for the client; map iteration order is random.
	completed := make([]string, 0, len(session.Outputs))
	for _, module := range constant.AllModules {
		if session.HasOutput(module) {
			completed = append(completed, module)
		}
	}

	response := &dto.ProgressResponse{
		SessionId:        session.Id,
		Status:           string(session.Status),
		CompletedModules: completed,
		LastError:        session.LastError,
	}

	// The DB is authoritative; the cache only adds the live stage of an
	// in-flight run.
	if gs.rdb != nil {
		if raw, err := gs.rdb.Get(ctx, progressKey(sessionId)).Result(); err == nil {
			var update dto.ProgressUpdateMessage
			if json.Unmarshal([]byte(raw), &update) == nil {
				response.Stage = update.Stage
			}
		}
	}

	return response, nil
}

func (gs *generationService) GetStats(ctx context.Context) (*dto.GenerationStatsResponse, error) {
	return gs.consumerService.Stats(), nil
}

func (gs *generationService) ownedSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*entity.IdeaSession, error) {
	uow := gs.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.IdeaSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.ErrNotFound
	}
	return session, nil
}

// uowSessionStore adapts the repository layer to the pipeline's persistence
// port. Lookups are by id only; ownership is enforced at the service
// boundary before a run starts.
type uowSessionStore struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ generation.SessionStore = &uowSessionStore{}

func (s *uowSessionStore) Find(ctx context.Context, id uuid.UUID) (*entity.IdeaSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.IdeaSessionRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *uowSessionStore) Save(ctx context.Context, session *entity.IdeaSession) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.IdeaSessionRepository().Update(ctx, session)
}

// eventNotifier forwards pipeline progress to the event bus and mirrors the
// latest stage into the redis progress cache. The runner already guards
// notifier panics; publish errors are logged and dropped.
type eventNotifier struct {
	publisher *pktNats.Publisher
	rdb       *redis.Client
}

var _ generation.ProgressNotifier = &eventNotifier{}

func (n *eventNotifier) Notify(ctx context.Context, session *entity.IdeaSession, stage string, module string) {
	if n.rdb != nil {
		update := dto.ProgressUpdateMessage{
			SessionId: session.Id,
			Stage:     stage,
			Module:    module,
			Status:    string(session.Status),
			Error:     session.LastError,
		}
		if raw, err := json.Marshal(update); err == nil {
			n.rdb.Set(ctx, progressKey(session.Id), raw, progressKeyTTL)
		}
	}

	if n.publisher == nil {
		return
	}

	extra := map[string]interface{}{
		"stage":  stage,
		"status": string(session.Status),
	}
	if module != "" {
		extra["module"] = module
	}
	if session.NotifyEmail != "" {
		extra["notify_email"] = session.NotifyEmail
	}
	if session.LastError != "" {
		extra["error"] = session.LastError
	}

	eventType := events.TypeGenerationStep
	switch stage {
	case generation.StageCompleted:
		eventType = events.TypeGenerationCompleted
	case generation.StagePartial:
		eventType = events.TypeGenerationPartial
	case generation.StageRegenerated:
		eventType = events.TypeModuleRegenerated
	}

	evt := events.NewSessionEvent(eventType, session.Id, session.UserId, extra)
	if err := n.publisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}
