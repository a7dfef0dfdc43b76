package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Idea       string `json:"idea" validate:"required,max=2000"`
	DomainHint string `json:"domain_hint" validate:"required,oneof=saas marketplace fintech healthtech edtech consumer deeptech other"`
	Tone       string `json:"tone" validate:"required,oneof=professional playful bold minimal"`
	// NotifyEmail, when set, receives a mail once the pipeline finishes.
	NotifyEmail string `json:"notify_email" validate:"omitempty,email"`
}

type CreateSessionResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ShowSessionResponse struct {
	Id          uuid.UUID              `json:"id"`
	Idea        string                 `json:"idea"`
	DomainHint  string                 `json:"domain_hint"`
	Tone        string                 `json:"tone"`
	Status      string                 `json:"status"`
	Outputs     map[string]interface{} `json:"outputs,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   *time.Time             `json:"updated_at,omitempty"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Idea      string     `json:"idea"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
