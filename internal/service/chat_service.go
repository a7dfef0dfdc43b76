package service

import (
	"context"
	"fmt"
	"time"

	"ideaforge-be/internal/constant"
	"ideaforge-be/internal/dto"
	"ideaforge-be/internal/entity"
	"ideaforge-be/internal/pkg/serverutils"
	"ideaforge-be/internal/repository/memory"
	"ideaforge-be/internal/repository/specification"
	"ideaforge-be/internal/repository/unitofwork"
	"ideaforge-be/pkg/chat"
	"ideaforge-be/pkg/generation"
	"ideaforge-be/pkg/llm"
	"ideaforge-be/pkg/store"

	"github.com/google/uuid"
)

// historyBufferTurns bounds the in-memory conversation; the context builder
// trims further to its own window when prompting.
const historyBufferTurns = 20

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	orch             *generation.Orchestrator
	models           []string
	conversationRepo *memory.ConversationRepository
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	models []string,
	metrics generation.MetricsRecorder,
	conversationRepo *memory.ConversationRepository,
) IChatService {
	llmLogger := initLLMLogger()

	return &chatService{
		uowFactory:       uowFactory,
		orch:             generation.NewOrchestrator(llmProvider, metrics, llmLogger),
		models:           models,
		conversationRepo: conversationRepo,
	}
}

func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.IdeaSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.IdeaSessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.ErrNotFound
	}

	inScope := chat.IsInScope(req.Chat)
	conversation := cs.loadConversation(ctx, uow, session)

	var reply string
	if inScope {
		prompt := chat.NewContextBuilder(session, conversation.Turns, req.Chat).Build()
		value, err := cs.orch.Generate(ctx, prompt, constant.SchemaChatAnswerV1, cs.models)
		if err != nil {
			return nil, err
		}
		reply, err = extractAnswer(value)
		if err != nil {
			return nil, err
		}
	} else {
		// Canned refusal, no model call.
		reply = constant.ChatOutOfScopeReplyV1
	}

	// The exchange enters both the persisted history and the cached window,
	// refusals included, so a cache rebuild never changes what the context
	// builder sees.
	conversation.Append(constant.ChatMessageRoleUser, req.Chat, historyBufferTurns)
	conversation.Append(constant.ChatMessageRoleModel, reply, historyBufferTurns)
	cs.conversationRepo.Save(conversation)

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		IdeaSessionId: session.Id,
		Role:          constant.ChatMessageRoleUser,
		Chat:          req.Chat,
		CreatedAt:     now,
	}
	modelMessage := entity.ChatMessage{
		Id:            uuid.New(),
		IdeaSessionId: session.Id,
		Role:          constant.ChatMessageRoleModel,
		Chat:          reply,
		CreatedAt:     now.Add(1 * time.Second),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &modelMessage); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		IdeaSessionId: session.Id,
		Reply:         reply,
		InScope:       inScope,
		CreatedAt:     modelMessage.CreatedAt,
	}, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

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

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByIdeaSessionID{IdeaSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
		})
	}

	return response, nil
}

// loadConversation fetches the cached conversation, rebuilding it from the
// persisted messages after a cache miss (restart or expiry).
func (cs *chatService) loadConversation(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.IdeaSession) *store.Conversation {
	if conversation, found := cs.conversationRepo.Get(session.Id.String()); found {
		return conversation
	}

	conversation := &store.Conversation{
		SessionID: session.Id.String(),
		UserID:    session.UserId.String(),
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByIdeaSessionID{IdeaSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		// Continue with an empty history; chat still works without it.
		return conversation
	}
	for _, msg := range messages {
		conversation.Append(msg.Role, msg.Chat, historyBufferTurns)
	}

	return conversation
}

func extractAnswer(value interface{}) (string, error) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("chat response is not a JSON object")
	}
	answer, ok := obj["answer"].(string)
	if !ok || answer == "" {
		return "", fmt.Errorf("chat response is missing the answer field")
	}
	return answer, nil
}
