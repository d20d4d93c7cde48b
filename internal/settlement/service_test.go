package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fkhayef/divvy/internal/currency"
	"github.com/fkhayef/divvy/internal/errs"
)

type fakeStore struct {
	nextID      int64
	settlements map[int64]*Settlement
}

func newFakeStore() *fakeStore {
	return &fakeStore{settlements: make(map[int64]*Settlement)}
}

func (s *fakeStore) Create(_ context.Context, groupID, payerID, payeeID int64, amountCents int64) (*Settlement, error) {
	s.nextID++
	amount, err := currency.Amount("USD", amountCents)
	if err != nil {
		return nil, err
	}
	st := &Settlement{
		ID:        s.nextID,
		GroupID:   groupID,
		PayerID:   payerID,
		PayeeID:   payeeID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	s.settlements[st.ID] = st
	return st, nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*Settlement, error) {
	st, ok := s.settlements[id]
	if !ok {
		return nil, ErrSettlementNotFound
	}
	return st, nil
}

func (s *fakeStore) ListByGroup(_ context.Context, groupID int64) ([]*Settlement, error) {
	var out []*Settlement
	for _, st := range s.settlements {
		if st.GroupID == groupID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.settlements[id]; !ok {
		return ErrSettlementNotFound
	}
	delete(s.settlements, id)
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

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, fakeMembers{1: {1, 2, 3}}, nil), store
}

func createReq(amount string) *CreateSettlementRequest {
	return &CreateSettlementRequest{
		GroupID:     1,
		Amount:      json.Number(amount),
		PaidBy:      2,
		SettledWith: 1,
	}
}

func TestCreateSettlement(t *testing.T) {
	svc, _ := newTestService()

	st, err := svc.Create(context.Background(), 2, createReq("16.67"))
	if err != nil {
		t.Fatal(err)
	}

	if currency.Cents(st.Amount) != 1667 {
		t.Errorf("amount = %d cents, want 1667", currency.Cents(st.Amount))
	}
	if st.PayerID != 2 || st.PayeeID != 1 {
		t.Errorf("payer/payee = %d/%d, want 2/1", st.PayerID, st.PayeeID)
	}
}

func TestCreateRejectsSelfSettlement(t *testing.T) {
	svc, _ := newTestService()

	req := createReq("10.00")
	req.SettledWith = 2

	_, err := svc.Create(context.Background(), 2, req)
	if !errors.Is(err, ErrCannotSettleSelf) {
		t.Errorf("got %v, want ErrCannotSettleSelf", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name      string
		mutate    func(*CreateSettlementRequest)
		wantField string
	}{
		{"zero amount", func(r *CreateSettlementRequest) { r.Amount = "0" }, "amount"},
		{"negative amount", func(r *CreateSettlementRequest) { r.Amount = "-1.00" }, "amount"},
		{"three decimals", func(r *CreateSettlementRequest) { r.Amount = "1.005" }, "amount"},
		{"missing group", func(r *CreateSettlementRequest) { r.GroupID = 0 }, "group_id"},
		{"payer mismatch", func(r *CreateSettlementRequest) { r.PaidBy = 3 }, "paid_by"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createReq("10.00")
			tt.mutate(req)

			_, err := svc.Create(context.Background(), 2, req)
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

func TestCreateRequiresBothMembers(t *testing.T) {
	svc, _ := newTestService()

	req := createReq("10.00")
	req.SettledWith = 99

	_, err := svc.Create(context.Background(), 2, req)
	if !errors.Is(err, ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}
}

func TestDeleteOnlyByPayer(t *testing.T) {
	svc, store := newTestService()

	st, err := svc.Create(context.Background(), 2, createReq("10.00"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), 1, st.ID); !errors.Is(err, ErrNotPayer) {
		t.Errorf("got %v, want ErrNotPayer", err)
	}
	if err := svc.Delete(context.Background(), 2, st.ID); err != nil {
		t.Fatal(err)
	}
	if len(store.settlements) != 0 {
		t.Error("settlement not deleted")
	}
}

func TestListByGroupRequiresMembership(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.ListByGroup(context.Background(), 99, 1); !errors.Is(err, ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}
}
