package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IdeaSession struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Idea        string         `gorm:"type:text;not null"`
	DomainHint  string         `gorm:"type:varchar(32);not null"`
	Tone        string         `gorm:"type:varchar(32);not null"`
	Status      string         `gorm:"type:varchar(16);not null;default:'created'"`
	Outputs     datatypes.JSON `gorm:"type:jsonb"`
	LastError   string         `gorm:"type:text"`
	NotifyEmail string         `gorm:"type:varchar(255)"` // Optional completion-email target

	CompletedAt *time.Time
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (IdeaSession) TableName() string {
	return "idea_sessions"
}
