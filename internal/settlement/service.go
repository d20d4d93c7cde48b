package settlement

import (
	"context"
	"errors"

	"github.com/fkhayef/divvy/internal/currency"
	"github.com/fkhayef/divvy/internal/errs"
)

// Common errors
var (
	ErrSettlementNotFound = errs.NotFound("settlement")
	ErrCannotSettleSelf   = errors.New("cannot create settlement with yourself")
	ErrNotPayer           = errors.New("only the payer can delete a settlement")
	ErrNotMember          = errors.New("user is not a member of this group")
)

// Store abstracts settlement persistence for the service.
type Store interface {
	Create(ctx context.Context, groupID, payerID, payeeID int64, amountCents int64) (*Settlement, error)
	GetByID(ctx context.Context, id int64) (*Settlement, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Settlement, error)
	Delete(ctx context.Context, id int64) error
}

// Memberships answers group membership questions.
type Memberships interface {
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// Notifier delivers settlement notifications.
type Notifier interface {
	SettlementRecorded(ctx context.Context, recipientID, settlementID int64, amount string)
}

// Service handles settlement business logic
type Service struct {
	store    Store
	members  Memberships
	notifier Notifier
}

// NewService creates a new settlement service
func NewService(store Store, members Memberships, notifier Notifier) *Service {
	return &Service{store: store, members: members, notifier: notifier}
}

// Create records a payment from the caller to another group member.
// Both parties must belong to the group; the amount must be positive.
func (s *Service) Create(ctx context.Context, actorID int64, req *CreateSettlementRequest) (*Settlement, error) {
	if req.GroupID <= 0 {
		return nil, errs.Validation("group_id", "must be a valid group")
	}
	if req.PaidBy != actorID {
		return nil, errs.Validation("paid_by", "must be the authenticated user")
	}
	if req.PaidBy == req.SettledWith {
		return nil, ErrCannotSettleSelf
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
	if err := s.requireMember(ctx, req.GroupID, req.SettledWith); err != nil {
		return nil, err
	}

	settlement, err := s.store.Create(ctx, req.GroupID, req.PaidBy, req.SettledWith, cents)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.SettlementRecorded(ctx, settlement.PayeeID, settlement.ID,
			currency.Format(settlement.Amount))
	}

	return settlement, nil
}

// GetByID retrieves a settlement. The caller must be a member of the
// settlement's group.
func (s *Service) GetByID(ctx context.Context, actorID, id int64) (*Settlement, error) {
	settlement, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, settlement.GroupID, actorID); err != nil {
		return nil, err
	}

	return settlement, nil
}

// ListByGroup retrieves all settlements in a group. The caller must be
// a member.
func (s *Service) ListByGroup(ctx context.Context, actorID, groupID int64) ([]*Settlement, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	return s.store.ListByGroup(ctx, groupID)
}

// Delete removes a settlement recorded by mistake. Only the payer may
// delete; the offset debt reappears in derived balances.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	settlement, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if settlement.PayerID != actorID {
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
