package implementation

import (
	"context"
	"errors"

	"ideaforge-be/internal/entity"
	"ideaforge-be/internal/mapper"
	"ideaforge-be/internal/model"
	"ideaforge-be/internal/repository/contract"
	"ideaforge-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdeaSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewIdeaSessionRepository(db *gorm.DB) contract.IdeaSessionRepository {
	return &IdeaSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *IdeaSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IdeaSessionRepositoryImpl) Create(ctx context.Context, session *entity.IdeaSession) error {
	m := r.mapper.IdeaSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.IdeaSessionToEntity(m)
	return nil
}

func (r *IdeaSessionRepositoryImpl) Update(ctx context.Context, session *entity.IdeaSession) error {
	m := r.mapper.IdeaSessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.IdeaSessionToEntity(m)
	return nil
}

func (r *IdeaSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.IdeaSession{}, id).Error
}

func (r *IdeaSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IdeaSession, error) {
	var m model.IdeaSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.IdeaSessionToEntity(&m), nil
}

func (r *IdeaSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeaSession, error) {
	var models []*model.IdeaSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.IdeaSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.IdeaSessionToEntity(m)
	}
	return entities, nil
}

func (r *IdeaSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.IdeaSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
