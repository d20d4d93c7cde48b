package expense

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fkhayef/divvy/internal/currency"
	"github.com/fkhayef/divvy/internal/errs"
	"github.com/fkhayef/divvy/internal/expense/split"
)

type fakeStore struct {
	nextID    int64
	expenses  map[int64]*Expense
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{expenses: make(map[int64]*Expense)}
}

func (s *fakeStore) Create(_ context.Context, groupID, payerID int64, title string, amountCents int64, shares []split.Share) (*Expense, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	amount, err := currency.Amount("USD", amountCents)
	if err != nil {
		return nil, err
	}
	e := &Expense{
		ID:        s.nextID,
		GroupID:   groupID,
		PayerID:   payerID,
		Title:     title,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	for _, sh := range shares {
		owed, err := currency.Amount("USD", sh.AmountOwed)
		if err != nil {
			return nil, err
		}
		e.Shares = append(e.Shares, &Share{ExpenseID: e.ID, UserID: sh.UserID, AmountOwed: owed})
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*Expense, error) {
	e, ok := s.expenses[id]
	if !ok {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

func (s *fakeStore) ListByGroup(_ context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var all []*Expense
	for _, e := range s.expenses {
		if e.GroupID == groupID {
			all = append(all, e)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	if end := offset + limit; end < total {
		all = all[:end]
	}
	return all[offset:], total, nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(s.expenses, id)
	return nil
}

type fakeMembers map[int64][]int64

func (m fakeMembers) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	for _, id := range m[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type recordedNotification struct {
	recipientID int64
	expenseID   int64
	title       string
	amount      string
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (n *fakeNotifier) ExpenseAdded(_ context.Context, recipientID, expenseID int64, title, amount string) {
	n.sent = append(n.sent, recordedNotification{recipientID, expenseID, title, amount})
}

func newTestService() (*Service, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	members := fakeMembers{1: {1, 2, 3}}
	return NewService(store, members, notifier), store, notifier
}

func createReq(amount string) *CreateExpenseRequest {
	return &CreateExpenseRequest{
		Title:     "Dinner",
		Amount:    json.Number(amount),
		GroupID:   1,
		PaidBy:    1,
		SplitWith: []int64{1, 2, 3},
	}
}

func TestCreateSplitsEqually(t *testing.T) {
	svc, _, notifier := newTestService()

	e, err := svc.Create(context.Background(), 1, createReq("50.00"))
	if err != nil {
		t.Fatal(err)
	}

	want := map[int64]int64{1: 1666, 2: 1667, 3: 1667}
	var sum int64
	for _, sh := range e.Shares {
		if got := currency.Cents(sh.AmountOwed); got != want[sh.UserID] {
			t.Errorf("user %d share = %d, want %d", sh.UserID, got, want[sh.UserID])
		}
		sum += currency.Cents(sh.AmountOwed)
	}
	if sum != 5000 {
		t.Errorf("shares sum to %d, want 5000", sum)
	}

	// Participants other than the payer are notified.
	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(notifier.sent))
	}
	for _, n := range notifier.sent {
		if n.recipientID == 1 {
			t.Error("payer was notified about their own expense")
		}
		if n.amount != "50.00" {
			t.Errorf("notification amount = %q, want %q", n.amount, "50.00")
		}
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name      string
		mutate    func(*CreateExpenseRequest)
		wantField string
	}{
		{"blank title", func(r *CreateExpenseRequest) { r.Title = "   " }, "title"},
		{"zero amount", func(r *CreateExpenseRequest) { r.Amount = "0" }, "amount"},
		{"negative amount", func(r *CreateExpenseRequest) { r.Amount = "-5.00" }, "amount"},
		{"three decimals", func(r *CreateExpenseRequest) { r.Amount = "10.001" }, "amount"},
		{"not a number", func(r *CreateExpenseRequest) { r.Amount = "abc" }, "amount"},
		{"no participants", func(r *CreateExpenseRequest) { r.SplitWith = nil }, "split_with"},
		{"duplicate participant", func(r *CreateExpenseRequest) { r.SplitWith = []int64{2, 2} }, "split_with"},
		{"payer mismatch", func(r *CreateExpenseRequest) { r.PaidBy = 2 }, "paid_by"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createReq("50.00")
			tt.mutate(req)

			_, err := svc.Create(context.Background(), 1, req)
			v, ok := errs.AsValidation(err)
			if !ok {
				t.Fatalf("got %v, want validation error", err)
			}
			if v.Field != tt.wantField {
				t.Errorf("field = %q, want %q", v.Field, tt.wantField)
			}
		})
	}
}

func TestCreateRejectsNonMembers(t *testing.T) {
	svc, store, _ := newTestService()

	req := createReq("50.00")
	req.SplitWith = []int64{1, 2, 99}

	_, err := svc.Create(context.Background(), 1, req)
	if !errors.Is(err, ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}
	if len(store.expenses) != 0 {
		t.Error("expense written despite rejected participant")
	}
}

func TestGetByIDRequiresMembership(t *testing.T) {
	svc, _, _ := newTestService()

	e, err := svc.Create(context.Background(), 1, createReq("50.00"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetByID(context.Background(), 99, e.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}
}

func TestDeleteOnlyByPayer(t *testing.T) {
	svc, store, _ := newTestService()

	e, err := svc.Create(context.Background(), 1, createReq("50.00"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), 2, e.ID); !errors.Is(err, ErrNotPayer) {
		t.Errorf("got %v, want ErrNotPayer", err)
	}
	if err := svc.Delete(context.Background(), 1, e.ID); err != nil {
		t.Fatal(err)
	}
	if len(store.expenses) != 0 {
		t.Error("expense not deleted")
	}
}

func TestCreateStoreFailureSendsNoNotifications(t *testing.T) {
	svc, store, notifier := newTestService()
	store.createErr = errs.Storage("create expense", errors.New("connection reset"))

	_, err := svc.Create(context.Background(), 1, createReq("50.00"))
	if !errs.IsStorage(err) {
		t.Fatalf("got %v, want storage error", err)
	}
	if len(notifier.sent) != 0 {
		t.Error("notifications sent for an expense that was never stored")
	}
}

func TestDeleteUnknownExpense(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Delete(context.Background(), 1, 42); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}
