package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fkhayef/divvy/internal/errs"
	"github.com/fkhayef/divvy/internal/user"
)

type fakeUserStore struct {
	nextID int64
	users  map[int64]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*user.User)}
}

func (s *fakeUserStore) Create(_ context.Context, username, email, passwordHash string) (*user.User, error) {
	s.nextID++
	u := &user.User{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func newTestService() (*Service, *fakeUserStore) {
	store := newFakeUserStore()
	return NewService(store, NewJWTManager("test-secret", time.Hour)), store
}

func register(t *testing.T, svc *Service) *user.User {
	t.Helper()
	u, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newTestService()

	u := register(t, svc)
	if u.PasswordHash == "correct horse" || u.PasswordHash == "" {
		t.Error("password stored without hashing")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name      string
		req       *RegisterRequest
		wantField string
	}{
		{"blank username", &RegisterRequest{Email: "a@b.c", Password: "long enough"}, "username"},
		{"bad email", &RegisterRequest{Username: "bob", Email: "nope", Password: "long enough"}, "email"},
		{"short password", &RegisterRequest{Username: "bob", Email: "b@b.c", Password: "short"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
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

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "long enough",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("got %v, want ErrUsernameTaken", err)
	}

	_, err = svc.Register(context.Background(), &RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "long enough",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}
}

func TestLoginWithUsernameOrEmail(t *testing.T) {
	svc, _ := newTestService()
	registered := register(t, svc)

	for _, req := range []*LoginRequest{
		{Username: "alice", Password: "correct horse"},
		{Email: "alice@example.com", Password: "correct horse"},
	} {
		u, token, err := svc.Login(context.Background(), req)
		if err != nil {
			t.Fatalf("login %+v: %v", req, err)
		}
		if u.ID != registered.ID {
			t.Errorf("logged in as user %d, want %d", u.ID, registered.ID)
		}
		if token == "" {
			t.Error("empty token")
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc)

	_, _, err := svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Login(context.Background(), &LoginRequest{Username: "ghost", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}
