package contract

import (
	"context"

	"ideaforge-be/internal/entity"
	"ideaforge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type IdeaSessionRepository interface {
	Create(ctx context.Context, session *entity.IdeaSession) error
	Update(ctx context.Context, session *entity.IdeaSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IdeaSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeaSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
