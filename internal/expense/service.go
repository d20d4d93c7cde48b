package expense

import (
	"context"
	"errors"
	"strings"

	"github.com/fkhayef/divvy/internal/currency"
	"github.com/fkhayef/divvy/internal/errs"
	"github.com/fkhayef/divvy/internal/expense/split"
)

// Common errors
var (
	ErrExpenseNotFound = errs.NotFound("expense")
	ErrNotPayer        = errors.New("only the payer can delete an expense")
	ErrNotMember       = errors.New("user is not a member of this group")
)

// Store abstracts expense persistence for the service.
type Store interface {
	Create(ctx context.Context, groupID, payerID int64, title string, amountCents int64, shares []split.Share) (*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error)
	Delete(ctx context.Context, id int64) error
}

// Memberships answers group membership questions.
type Memberships interface {
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// Notifier delivers expense notifications.
type Notifier interface {
	ExpenseAdded(ctx context.Context, recipientID, expenseID int64, title, amount string)
}

// Service handles expense business logic
type Service struct {
	store    Store
	members  Memberships
	notifier Notifier
}

// NewService creates a new expense service with dependencies injected
func NewService(store Store, members Memberships, notifier Notifier) *Service {
	return &Service{store: store, members: members, notifier: notifier}
}

// Create records an expense paid by the caller and splits it equally
// among the listed participants. The payer may appear in split_with to
// carry a share themselves.
func (s *Service) Create(ctx context.Context, actorID int64, req *CreateExpenseRequest) (*Expense, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errs.Validation("title", "must not be empty")
	}
	if len(title) > 255 {
		return nil, errs.Validation("title", "must be at most 255 characters")
	}
	if req.GroupID <= 0 {
		return nil, errs.Validation("group_id", "must be a valid group")
	}
	if req.PaidBy != actorID {
		return nil, errs.Validation("paid_by", "must be the authenticated user")
	}
	if len(req.SplitWith) == 0 {
		return nil, errs.Validation("split_with", "must list at least one participant")
	}

	cents, err := currency.ParseCents(req.Amount.String())
	if err != nil {
		return nil, err
	}
	if cents <= 0 {
		return nil, errs.Validation("amount", "must be positive")
	}

	if err := s.requireMember(ctx, req.GroupID, req.PaidBy); err != nil {
		return nil, err
	}
	for _, userID := range req.SplitWith {
		if err := s.requireMember(ctx, req.GroupID, userID); err != nil {
			return nil, err
		}
	}

	shares, err := split.Equal(cents, req.SplitWith)
	if err != nil {
		return nil, errs.Validation("split_with", err.Error())
	}

	expense, err := s.store.Create(ctx, req.GroupID, req.PaidBy, title, cents, shares)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		amount := currency.Format(expense.Amount)
		for _, sh := range expense.Shares {
			if sh.UserID == expense.PayerID {
				continue
			}
			s.notifier.ExpenseAdded(ctx, sh.UserID, expense.ID, expense.Title, amount)
		}
	}

	return expense, nil
}

// GetByID retrieves an expense with its shares. The caller must be a
// member of the expense's group.
func (s *Service) GetByID(ctx context.Context, actorID, id int64) (*Expense, error) {
	expense, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, expense.GroupID, actorID); err != nil {
		return nil, err
	}

	return expense, nil
}

// ListByGroup retrieves a page of expenses in a group along with the
// total count. The caller must be a member.
func (s *Service) ListByGroup(ctx context.Context, actorID, groupID int64, page, perPage int) ([]*Expense, int, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, 0, err
	}

	return s.store.ListByGroup(ctx, groupID, perPage, (page-1)*perPage)
}

// Delete removes an expense and its shares. Only the payer may delete;
// balances derived from the expense revert with it.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	expense, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if expense.PayerID != actorID {
		return ErrNotPayer
	}

	return s.store.Delete(ctx, id)
}

func (s *Service) requireMember(ctx context.Context, groupID, userID int64) error {
	ok, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}
