package service

import (
	"context"
	"fmt"
	"strings"

	"ideaforge-be/internal/dto"
	"ideaforge-be/internal/pkg/logger"
	"ideaforge-be/internal/pkg/mailer"
	"ideaforge-be/pkg/events"
	pktNats "ideaforge-be/pkg/nats"

	"github.com/google/uuid"
)

// ProgressDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type ProgressDelivery interface {
	Send(userID uuid.UUID, update dto.ProgressUpdateMessage)
}

// NotificationService fans generation events out to connected clients and,
// when a session asked for it, to email.
type NotificationService struct {
	subscriber   *pktNats.Subscriber
	delivery     ProgressDelivery
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery ProgressDelivery, emailService mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber:   sub,
		delivery:     delivery,
		emailService: emailService,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userID, err := uuid.Parse(asString(payload["user_id"]))
	if err != nil {
		// Not a session event we know how to route; skip without retry.
		s.logger.Warn("NotificationService", "Event without routable user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	sessionID, _ := uuid.Parse(asString(payload["session_id"]))

	update := dto.ProgressUpdateMessage{
		SessionId: sessionID,
		Stage:     asString(payload["stage"]),
		Module:    asString(payload["module"]),
		Status:    asString(payload["status"]),
		Error:     asString(payload["error"]),
	}
	if update.Stage == "" {
		update.Stage = strings.TrimPrefix(event.EventType(), "generation.")
	}

	if s.delivery != nil {
		s.delivery.Send(userID, update)
	}

	// Terminal stages optionally go out by mail too.
	switch event.EventType() {
	case events.TypeGenerationCompleted, events.TypeGenerationPartial:
		if email := asString(payload["notify_email"]); email != "" && s.emailService != nil {
			if err := s.emailService.SendGenerationComplete(email, sessionID.String(), update.Status); err != nil {
				s.logger.Error("NotificationService", "Failed to send completion email", map[string]interface{}{
					"session_id": sessionID,
					"error":      err,
				})
			}
		}
	}

	return nil
}

func asString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return ""
	}
}
