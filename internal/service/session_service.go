package service

import (
	"context"
	"fmt"
	"time"

	"ideaforge-be/internal/dto"
	"ideaforge-be/internal/entity"
	"ideaforge-be/internal/pkg/serverutils"
	"ideaforge-be/internal/repository/specification"
	"ideaforge-be/internal/repository/unitofwork"
	"ideaforge-be/pkg/events"
	pktNats "ideaforge-be/pkg/nats"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowSessionResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (s *sessionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := entity.IdeaSession{
		Id:          uuid.New(),
		UserId:      userId,
		Idea:        req.Idea,
		DomainHint:  req.DomainHint,
		Tone:        req.Tone,
		Status:      entity.SessionStatusCreated,
		NotifyEmail: req.NotifyEmail,
		CreatedAt:   time.Now(),
	}

	if err := uow.IdeaSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	// Auxiliary: downstream listeners pick this up for notifications.
	if s.eventPublisher != nil {
		evt := events.NewSessionEvent(events.TypeSessionCreated, session.Id, userId, map[string]interface{}{
			"domain_hint": session.DomainHint,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.TypeSessionCreated, err)
		}
	}

	return &dto.CreateSessionResponse{
		Id:     session.Id,
		Status: string(session.Status),
	}, nil
}

func (s *sessionService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.IdeaSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.ErrNotFound
	}

	return &dto.ShowSessionResponse{
		Id:          session.Id,
		Idea:        session.Idea,
		DomainHint:  session.DomainHint,
		Tone:        session.Tone,
		Status:      string(session.Status),
		Outputs:     session.Outputs,
		LastError:   session.LastError,
		CompletedAt: session.CompletedAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}, nil
}

func (s *sessionService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.IdeaSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Idea:      session.Idea,
			Status:    string(session.Status),
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}

	return response, nil
}

// Delete removes the session and its chat history in one transaction.
func (s *sessionService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.IdeaSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.ErrNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteAllBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.IdeaSessionRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}
