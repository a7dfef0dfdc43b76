package unitofwork

import (
	"context"

	"ideaforge-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	IdeaSessionRepository() contract.IdeaSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
