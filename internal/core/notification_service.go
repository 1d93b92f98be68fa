package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/metrics"
	"grantmatch-backend-go/internal/models"
	"grantmatch-backend-go/pkg/mailer"
	"grantmatch-backend-go/pkg/messagequeue"
)

// NotificationEvent is the queue payload for one stored notification.
type NotificationEvent struct {
	Notification models.Notification `json:"notification"`
	Email        string              `json:"email,omitempty"`
}

// NotificationDelivery holds the optional delivery channels. Nil fields
// disable the channel.
type NotificationDelivery struct {
	Queue     messagequeue.MessageQueue
	QueueName string
	Mailer    mailer.Mailer
}

type notificationService struct {
	repo     db.NotificationRepository
	delivery NotificationDelivery
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService creates a NotificationService. When a queue is
// configured, mail is left to the queue consumer; otherwise it is sent inline.
func NewNotificationService(repo db.NotificationRepository, delivery NotificationDelivery, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, delivery: delivery, logger: logger, now: time.Now}
}

func (s *notificationService) Notify(ctx context.Context, n models.Notification, email string) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	event := NotificationEvent{Notification: n, Email: email}
	if s.delivery.Queue != nil {
		body, err := json.Marshal(event)
		if err == nil {
			err = s.delivery.Queue.Publish(ctx, s.delivery.QueueName, body)
		}
		if err != nil {
			metrics.NotificationsPublished.WithLabelValues("queue", "error").Inc()
			s.logger.Warn("Failed to publish notification", zap.String("notification_id", n.ID), zap.Error(err))
		} else {
			metrics.NotificationsPublished.WithLabelValues("queue", "ok").Inc()
		}
		return nil
	}

	if s.delivery.Mailer != nil {
		if err := deliverByMail(ctx, s.delivery.Mailer, event); err != nil {
			metrics.NotificationsPublished.WithLabelValues("email", "error").Inc()
			s.logger.Warn("Failed to email notification", zap.String("notification_id", n.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *notificationService) ListForAccount(ctx context.Context, accountID string) ([]*models.Notification, error) {
	list, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, repoError(err, "notifications")
	}
	if list == nil {
		list = []*models.Notification{}
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, accountID, id string) error {
	if err := s.repo.MarkRead(ctx, accountID, id); err != nil {
		return repoError(err, fmt.Sprintf("notification '%s'", id))
	}
	return nil
}

// deliverByMail emails tier changes; other kinds are in-app only.
func deliverByMail(ctx context.Context, m mailer.Mailer, event NotificationEvent) error {
	if event.Email == "" || event.Notification.Kind != models.NotificationTierChanged {
		return nil
	}
	err := m.Send(ctx, mailer.Message{
		To:      event.Email,
		Subject: event.Notification.Title,
		Body:    "<p>" + event.Notification.Message + "</p>",
	})
	if err == nil {
		metrics.NotificationsPublished.WithLabelValues("email", "ok").Inc()
	}
	return err
}

// NotificationMailHandler consumes queued notification events and emails
// the ones that warrant it. Undecodable messages are dropped.
func NotificationMailHandler(ctx context.Context, m mailer.Mailer, logger *zap.Logger) func(body []byte) error {
	return func(body []byte) error {
		var event NotificationEvent
		if err := json.Unmarshal(body, &event); err != nil {
			logger.Warn("Dropping undecodable notification event", zap.Error(err))
			return nil
		}
		if err := deliverByMail(ctx, m, event); err != nil {
			metrics.NotificationsPublished.WithLabelValues("email", "error").Inc()
			return fmt.Errorf("failed to email notification %s: %w", event.Notification.ID, err)
		}
		return nil
	}
}

// notify stores a notification and logs failures without failing the caller.
func notify(ctx context.Context, svc NotificationService, logger *zap.Logger, n models.Notification, email string) {
	if svc == nil {
		return
	}
	if err := svc.Notify(ctx, n, email); err != nil {
		logger.Warn("Failed to create notification", zap.String("kind", n.Kind), zap.String("account_id", n.AccountID), zap.Error(err))
	}
}
