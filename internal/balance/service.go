package balance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fkhayef/divvy/internal/expense"
	"github.com/fkhayef/divvy/internal/settlement"
)

var anomaliesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "divvy_balance_anomalies_total",
	Help: "Historical records skipped during balance aggregation because a referenced user no longer exists.",
})

// ErrNotMember is returned when a user requests balances for a group
// they do not belong to.
var ErrNotMember = errors.New("user is not a member of this group")

// ExpenseSource loads the expense share rows a user is involved in.
type ExpenseSource interface {
	SharesInvolving(ctx context.Context, userID, groupID int64) ([]expense.ShareRecord, error)
}

// SettlementSource loads the settlement rows a user is involved in.
type SettlementSource interface {
	Involving(ctx context.Context, userID, groupID int64) ([]settlement.Record, error)
}

// UserDirectory resolves user IDs to usernames. IDs with no matching
// user are absent from the returned map.
type UserDirectory interface {
	UsernamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Memberships answers group membership questions.
type Memberships interface {
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// Service computes balance dashboards from the expense and settlement
// logs.
type Service struct {
	expenses    ExpenseSource
	settlements SettlementSource
	users       UserDirectory
	members     Memberships
	logger      *slog.Logger
}

// NewService creates a new balance service
func NewService(expenses ExpenseSource, settlements SettlementSource, users UserDirectory, members Memberships, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		expenses:    expenses,
		settlements: settlements,
		users:       users,
		members:     members,
		logger:      logger,
	}
}

// Result pairs the folded balance with the usernames of every
// counterparty that appears in it.
type Result struct {
	Balance   *Balance
	Usernames map[int64]string
}

// Compute derives the caller's balances. A groupID of zero spans all
// groups the user belongs to; a non-zero groupID scopes the projection
// to that group and requires membership.
func (s *Service) Compute(ctx context.Context, userID, groupID int64) (*Result, error) {
	if groupID != 0 {
		ok, err := s.members.IsMember(ctx, groupID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotMember
		}
	}

	shares, err := s.expenses.SharesInvolving(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.settlements.Involving(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	names, err := s.users.UsernamesByIDs(ctx, counterpartyIDs(userID, shares, settlements))
	if err != nil {
		return nil, err
	}

	known := func(id int64) bool {
		_, ok := names[id]
		return ok
	}

	balance, anomalies := Compute(userID, shares, settlements, known)
	if anomalies > 0 {
		anomaliesTotal.Add(float64(anomalies))
		s.logger.Warn("skipped records referencing missing users during balance aggregation",
			"user_id", userID,
			"group_id", groupID,
			"skipped", anomalies,
		)
	}

	return &Result{Balance: balance, Usernames: names}, nil
}

// NetBalance returns the caller's net position within one group in
// cents. It backs the per-group totals on the group list.
func (s *Service) NetBalance(ctx context.Context, userID, groupID int64) (int64, error) {
	result, err := s.Compute(ctx, userID, groupID)
	if err != nil {
		return 0, err
	}
	return result.Balance.NetBalance, nil
}

func counterpartyIDs(userID int64, shares []expense.ShareRecord, settlements []settlement.Record) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	add := func(id int64) {
		if id != userID && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, sh := range shares {
		add(sh.PayerID)
		add(sh.UserID)
	}
	for _, rec := range settlements {
		add(rec.PayerID)
		add(rec.PayeeID)
	}
	return ids
}
