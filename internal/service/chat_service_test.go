package service

import (
	"context"
	"testing"

	"ideaforge-be/internal/constant"
	"ideaforge-be/internal/dto"
	"ideaforge-be/internal/entity"
	"ideaforge-be/internal/repository/contract"
	"ideaforge-be/internal/repository/memory"
	"ideaforge-be/internal/repository/specification"
	"ideaforge-be/internal/repository/unitofwork"
	"ideaforge-be/pkg/generation"
	"ideaforge-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatUow backs SendChat with in-memory repositories. One instance acts
// as both the factory and the unit of work.
type fakeChatUow struct {
	session  *entity.IdeaSession
	messages []*entity.ChatMessage
	commits  int
}

func (f *fakeChatUow) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f }

func (f *fakeChatUow) Begin(ctx context.Context) error { return nil }
func (f *fakeChatUow) Commit() error {
	f.commits++
	return nil
}
func (f *fakeChatUow) Rollback() error { return nil }

func (f *fakeChatUow) IdeaSessionRepository() contract.IdeaSessionRepository {
	return &fakeSessionLookup{session: f.session}
}

func (f *fakeChatUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{uow: f}
}

type fakeSessionLookup struct {
	session *entity.IdeaSession
}

func (r *fakeSessionLookup) Create(ctx context.Context, s *entity.IdeaSession) error { return nil }
func (r *fakeSessionLookup) Update(ctx context.Context, s *entity.IdeaSession) error { return nil }
func (r *fakeSessionLookup) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (r *fakeSessionLookup) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IdeaSession, error) {
	return r.session, nil
}
func (r *fakeSessionLookup) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeaSession, error) {
	return nil, nil
}
func (r *fakeSessionLookup) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeMessageRepo struct {
	uow *fakeChatUow
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.uow.messages = append(r.uow.messages, message)
	return nil
}
func (r *fakeMessageRepo) DeleteAllBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}
func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return r.uow.messages, nil
}
func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.uow.messages)), nil
}

// silentProvider fails the test on any call; the refusal path must never
// reach the model.
type silentProvider struct {
	t *testing.T
}

func (p *silentProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.t.Fatal("provider called for an out-of-scope message")
	return "", nil
}

func (p *silentProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.Generate(ctx, "", options...)
}

func newChatFixture(t *testing.T, provider llm.LLMProvider) (*chatService, *fakeChatUow, *entity.IdeaSession) {
	session := &entity.IdeaSession{
		Id:     uuid.New(),
		UserId: uuid.New(),
		Idea:   "a meal-planning app for shift workers",
		Status: entity.SessionStatusCompleted,
	}
	uow := &fakeChatUow{session: session}

	cs := &chatService{
		uowFactory:       uow,
		orch:             generation.NewOrchestrator(provider, nil, nil),
		models:           []string{"model-a"},
		conversationRepo: memory.NewConversationRepository(),
	}
	return cs, uow, session
}

func TestSendChatOutOfScopeUpdatesCachedConversation(t *testing.T) {
	cs, uow, session := newChatFixture(t, &silentProvider{t: t})

	resp, err := cs.SendChat(context.Background(), session.UserId, &dto.SendChatRequest{
		IdeaSessionId: session.Id,
		Chat:          "what's the weather like today",
	})
	require.NoError(t, err)

	assert.False(t, resp.InScope)
	assert.Equal(t, constant.ChatOutOfScopeReplyV1, resp.Reply)
	require.Len(t, uow.messages, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, uow.messages[0].Role)
	assert.Equal(t, constant.ChatMessageRoleModel, uow.messages[1].Role)
	assert.Equal(t, 1, uow.commits)

	// The refusal must land in the cached window too, or the in-memory
	// history diverges from a DB rebuild until the cache entry expires.
	conversation, found := cs.conversationRepo.Get(session.Id.String())
	require.True(t, found, "conversation not cached after a refusal")
	require.Len(t, conversation.Turns, 2)
	assert.Equal(t, "what's the weather like today", conversation.Turns[0].Text)
	assert.Equal(t, constant.ChatOutOfScopeReplyV1, conversation.Turns[1].Text)
}

func TestSendChatInScopeAppendsBothTurns(t *testing.T) {
	provider := &cannedProvider{response: `{"answer": "Freemium with a paid team tier fits best."}`}
	cs, uow, session := newChatFixture(t, provider)

	resp, err := cs.SendChat(context.Background(), session.UserId, &dto.SendChatRequest{
		IdeaSessionId: session.Id,
		Chat:          "what pricing model suits this product?",
	})
	require.NoError(t, err)

	assert.True(t, resp.InScope)
	assert.Equal(t, "Freemium with a paid team tier fits best.", resp.Reply)
	require.Len(t, uow.messages, 2)

	conversation, found := cs.conversationRepo.Get(session.Id.String())
	require.True(t, found)
	require.Len(t, conversation.Turns, 2)
	assert.Equal(t, constant.ChatMessageRoleModel, conversation.Turns[1].Role)
}

type cannedProvider struct {
	response string
}

func (p *cannedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.response, nil
}

func (p *cannedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.response, nil
}
