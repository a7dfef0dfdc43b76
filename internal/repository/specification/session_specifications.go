package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByIdeaSessionID filters chat messages belonging to one idea session.
type ByIdeaSessionID struct {
	IdeaSessionID uuid.UUID
}

func (s ByIdeaSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("idea_session_id = ?", s.IdeaSessionID)
}

// ByStatus filters idea sessions by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
