package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	IdeaSessionId uuid.UUID `json:"idea_session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required,max=2000"`
}

type SendChatResponse struct {
	IdeaSessionId uuid.UUID `json:"idea_session_id"`
	Reply         string    `json:"reply"`
	InScope       bool      `json:"in_scope"`
	CreatedAt     time.Time `json:"created_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}
