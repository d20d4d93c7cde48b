package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fkhayef/divvy/internal/errs"
)

type fakeStore struct {
	nextID        int64
	notifications map[int64]*Notification
	createErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{notifications: make(map[int64]*Notification)}
}

func (s *fakeStore) Create(_ context.Context, recipientID int64, message string, entityType *string, entityID *int64) (*Notification, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	n := &Notification{
		ID:                s.nextID,
		RecipientID:       recipientID,
		Message:           message,
		RelatedEntityType: entityType,
		RelatedEntityID:   entityID,
		CreatedAt:         time.Now(),
	}
	s.notifications[n.ID] = n
	return n, nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*Notification, error) {
	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

func (s *fakeStore) ListByRecipientID(_ context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (s *fakeStore) MarkAsRead(_ context.Context, id int64) error {
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (s *fakeStore) MarkAllAsRead(_ context.Context, recipientID int64) error {
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *fakeStore) GetUnreadCount(_ context.Context, recipientID int64) (int, error) {
	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestDomainEventsCreateNotifications(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		fire        func()
		wantType    string
		wantInBody  string
		recipientID int64
	}{
		{
			name:        "member added",
			fire:        func() { svc.MemberAdded(ctx, 2, 7, "Trip") },
			wantType:    "GROUP",
			wantInBody:  "Trip",
			recipientID: 2,
		},
		{
			name:        "expense added",
			fire:        func() { svc.ExpenseAdded(ctx, 3, 11, "Dinner", "50.00") },
			wantType:    "EXPENSE",
			wantInBody:  "50.00",
			recipientID: 3,
		},
		{
			name:        "settlement recorded",
			fire:        func() { svc.SettlementRecorded(ctx, 4, 13, "16.67") },
			wantType:    "SETTLEMENT",
			wantInBody:  "16.67",
			recipientID: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(store.notifications)
			tt.fire()
			if len(store.notifications) != before+1 {
				t.Fatal("no notification stored")
			}

			list, _, err := svc.ListByRecipientID(ctx, tt.recipientID, 1, 20, false)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 {
				t.Fatalf("recipient has %d notifications, want 1", len(list))
			}
			n := list[0]
			if n.RelatedEntityType == nil || *n.RelatedEntityType != tt.wantType {
				t.Errorf("entity type = %v, want %q", n.RelatedEntityType, tt.wantType)
			}
			if !strings.Contains(n.Message, tt.wantInBody) {
				t.Errorf("message %q does not mention %q", n.Message, tt.wantInBody)
			}
		})
	}
}

func TestDeliveryIsBestEffort(t *testing.T) {
	store := newFakeStore()
	store.createErr = errs.Storage("create notification", errors.New("connection reset"))
	svc := NewService(store, nil)

	// A failed insert must not propagate to the triggering operation.
	svc.ExpenseAdded(context.Background(), 2, 11, "Dinner", "50.00")

	if len(store.notifications) != 0 {
		t.Error("notification stored despite insert failure")
	}
}

func TestMarkAsReadOnlyByRecipient(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	svc.MemberAdded(ctx, 2, 7, "Trip")

	if err := svc.MarkAsRead(ctx, 1, 9); !errors.Is(err, ErrNotRecipient) {
		t.Errorf("got %v, want ErrNotRecipient", err)
	}
	if err := svc.MarkAsRead(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}

	count, err := svc.GetUnreadCount(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unread count = %d, want 0", count)
	}
}

func TestMarkAllAsRead(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	svc.MemberAdded(ctx, 2, 7, "Trip")
	svc.ExpenseAdded(ctx, 2, 11, "Dinner", "50.00")

	if err := svc.MarkAllAsRead(ctx, 2); err != nil {
		t.Fatal(err)
	}

	count, err := svc.GetUnreadCount(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unread count = %d, want 0", count)
	}
}
