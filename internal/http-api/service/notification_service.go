package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

type NotificationService interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	// Notify stores a notification and only logs when that fails.
	Notify(ctx context.Context, recipient, kind, title, message string)
	ListMine(ctx context.Context, actor Actor, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error)
	List(ctx context.Context, recipient string, page, pageSize int) ([]models.Notification, int64, error)
	MarkAsRead(ctx context.Context, actor Actor, id int64) (*models.Notification, error)
	Delete(ctx context.Context, id int64) error
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &notificationService{repo: repo, log: log}
}

func (s *notificationService) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.Recipient = strings.TrimSpace(n.Recipient)
	n.Type = strings.ToUpper(strings.TrimSpace(n.Type))
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}

	switch {
	case n.Recipient == "":
		return nil, errs.Validation("recipient is required")
	case strings.TrimSpace(n.Title) == "":
		return nil, errs.Validation("title is required")
	case strings.TrimSpace(n.Message) == "":
		return nil, errs.Validation("message is required")
	}
	switch n.Type {
	case models.NotificationInfo, models.NotificationAlert, models.NotificationWarning:
	default:
		return nil, errs.Validation("type must be one of INFO, ALERT, WARNING")
	}

	n.ID = 0
	n.IsRead = false
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) Notify(ctx context.Context, recipient, kind, title, message string) {
	n := &models.Notification{Recipient: recipient, Type: kind, Title: title, Message: message}
	if _, err := s.Create(ctx, n); err != nil {
		s.log.Warn("notification dropped",
			zap.String("recipient", recipient),
			zap.String("title", title),
			zap.Error(err))
	}
}

func (s *notificationService) ListMine(ctx context.Context, actor Actor, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, actor.Username, unreadOnly, page, pageSize)
}

func (s *notificationService) List(ctx context.Context, recipient string, page, pageSize int) ([]models.Notification, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, strings.TrimSpace(recipient), false, page, pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, actor Actor, id int64) (*models.Notification, error) {
	n, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Recipient != actor.Username && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if n.IsRead {
		return n, nil
	}

	if err := s.repo.MarkAsRead(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.IsRead = true
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *notificationService) find(ctx context.Context, id int64) (*models.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}
