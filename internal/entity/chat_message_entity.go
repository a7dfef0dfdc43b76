package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	IdeaSessionId uuid.UUID
	Role          string
	Chat          string
	CreatedAt     time.Time
}
