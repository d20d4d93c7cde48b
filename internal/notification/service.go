package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fkhayef/divvy/internal/errs"
)

// Common errors
var (
	ErrNotificationNotFound = errs.NotFound("notification")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store abstracts notification persistence for the service.
type Store interface {
	Create(ctx context.Context, recipientID int64, message string, entityType *string, entityID *int64) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, recipientID int64) error
	GetUnreadCount(ctx context.Context, recipientID int64) (int, error)
}

// Service handles notification business logic
type Service struct {
	repo   Store
	logger *slog.Logger
}

// NewService creates a new notification service
func NewService(repo Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Notification, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByRecipientID retrieves notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// The methods below satisfy the Notifier interfaces of the group,
// expense, and settlement packages. Delivery is best effort: a failed
// insert is logged and never fails the triggering operation.

// MemberAdded records that a user was added to a group.
func (s *Service) MemberAdded(ctx context.Context, recipientID, groupID int64, groupName string) {
	entityType := "GROUP"
	s.create(ctx, recipientID, "You have been added to group: "+groupName, &entityType, &groupID)
}

// ExpenseAdded records that a user received a share of a new expense.
func (s *Service) ExpenseAdded(ctx context.Context, recipientID, expenseID int64, title, amount string) {
	entityType := "EXPENSE"
	s.create(ctx, recipientID, "New expense '"+title+"' ("+amount+") includes your share", &entityType, &expenseID)
}

// SettlementRecorded records that a payment to the user was logged.
func (s *Service) SettlementRecorded(ctx context.Context, recipientID, settlementID int64, amount string) {
	entityType := "SETTLEMENT"
	s.create(ctx, recipientID, "A payment of "+amount+" to you was recorded", &entityType, &settlementID)
}

func (s *Service) create(ctx context.Context, recipientID int64, message string, entityType *string, entityID *int64) {
	if _, err := s.repo.Create(ctx, recipientID, message, entityType, entityID); err != nil {
		s.logger.Warn("failed to deliver notification",
			"recipient_id", recipientID,
			"error", err,
		)
	}
}
