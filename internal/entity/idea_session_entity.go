package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusCreated    SessionStatus = "created"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusPartial    SessionStatus = "partial"
	SessionStatusFailed     SessionStatus = "failed"
)

// IdeaSession is one user's idea-to-business-package generation run.
// Outputs maps module names to the structured value the orchestrator
// produced; modules never attempted are absent from the map.
type IdeaSession struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Idea        string
	DomainHint  string
	Tone        string
	Status      SessionStatus
	Outputs     map[string]interface{}
	LastError   string
	NotifyEmail string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// SetOutput records a module result, allocating the map on first write.
func (s *IdeaSession) SetOutput(module string, value interface{}) {
	if s.Outputs == nil {
		s.Outputs = make(map[string]interface{})
	}
	s.Outputs[module] = value
}

// HasOutput reports whether a module has a persisted successful result.
func (s *IdeaSession) HasOutput(module string) bool {
	_, ok := s.Outputs[module]
	return ok
}

// MarkCompleted transitions to completed. CompletedAt is set only the first
// time the session reaches this status.
func (s *IdeaSession) MarkCompleted(now time.Time) {
	s.Status = SessionStatusCompleted
	if s.CompletedAt == nil {
		s.CompletedAt = &now
	}
}
