package mapper

import (
	"encoding/json"
	"time"

	"ideaforge-be/internal/entity"
	"ideaforge-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) IdeaSessionToEntity(s *model.IdeaSession) *entity.IdeaSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var outputs map[string]interface{}
	if len(s.Outputs) > 0 {
		// A corrupt column should not take the whole session down; the
		// entity just reports no outputs.
		_ = json.Unmarshal(s.Outputs, &outputs)
	}

	return &entity.IdeaSession{
		Id:          s.Id,
		UserId:      s.UserId,
		Idea:        s.Idea,
		DomainHint:  s.DomainHint,
		Tone:        s.Tone,
		Status:      entity.SessionStatus(s.Status),
		Outputs:     outputs,
		LastError:   s.LastError,
		NotifyEmail: s.NotifyEmail,
		CompletedAt: s.CompletedAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *SessionMapper) IdeaSessionToModel(s *entity.IdeaSession) *model.IdeaSession {
	if s == nil {
		return nil
	}

	var outputs datatypes.JSON
	if s.Outputs != nil {
		if raw, err := json.Marshal(s.Outputs); err == nil {
			outputs = raw
		}
	}

	result := &model.IdeaSession{
		Id:          s.Id,
		UserId:      s.UserId,
		Idea:        s.Idea,
		DomainHint:  s.DomainHint,
		Tone:        s.Tone,
		Status:      string(s.Status),
		Outputs:     outputs,
		LastError:   s.LastError,
		NotifyEmail: s.NotifyEmail,
		CompletedAt: s.CompletedAt,
		CreatedAt:   s.CreatedAt,
	}
	if s.UpdatedAt != nil {
		result.UpdatedAt = *s.UpdatedAt
	}
	if s.DeletedAt != nil {
		result.DeletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}
	return result
}
