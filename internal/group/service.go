package group

import (
	"context"
	"errors"
	"strings"

	"github.com/fkhayef/divvy/internal/errs"
)

// Common errors
var (
	ErrGroupNotFound = errs.NotFound("group")
	ErrNotMember     = errors.New("user is not a member of this group")
)

// Store abstracts group persistence for the service.
type Store interface {
	Create(ctx context.Context, name string, createdBy int64, memberIDs []int64) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Group, error)
	AddMembers(ctx context.Context, groupID int64, userIDs []int64) error
	GetMembers(ctx context.Context, groupID int64) ([]*Member, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	MissingUsers(ctx context.Context, userIDs []int64) ([]int64, error)
}

// Notifier delivers group membership notifications.
type Notifier interface {
	MemberAdded(ctx context.Context, recipientID, groupID int64, groupName string)
}

// Service handles group business logic
type Service struct {
	store    Store
	notifier Notifier
}

// NewService creates a new group service
func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Create creates a new group with the caller enrolled as admin. Any
// user IDs in the request are enrolled as members alongside the creator.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.Validation("name", "must not be empty")
	}
	if len(name) > 100 {
		return nil, errs.Validation("name", "must be at most 100 characters")
	}

	if err := s.checkUsersExist(ctx, req.UserIDs); err != nil {
		return nil, err
	}

	group, err := s.store.Create(ctx, name, creatorID, req.UserIDs)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		for _, userID := range req.UserIDs {
			if userID == creatorID {
				continue
			}
			s.notifier.MemberAdded(ctx, userID, group.ID, group.Name)
		}
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	return s.store.GetByID(ctx, id)
}

// ListByUserID retrieves all groups the user belongs to.
func (s *Service) ListByUserID(ctx context.Context, userID int64) ([]*Group, error) {
	return s.store.ListByUserID(ctx, userID)
}

// AddMembers enrolls users into a group. The caller must already be a
// member. Users that already belong to the group are skipped.
func (s *Service) AddMembers(ctx context.Context, actorID, groupID int64, req *AddMembersRequest) error {
	if len(req.UserIDs) == 0 {
		return errs.Validation("user_ids", "must not be empty")
	}

	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return err
	}

	if err := s.checkUsersExist(ctx, req.UserIDs); err != nil {
		return err
	}

	if err := s.store.AddMembers(ctx, groupID, req.UserIDs); err != nil {
		return err
	}

	if s.notifier != nil {
		for _, userID := range req.UserIDs {
			if userID == actorID {
				continue
			}
			s.notifier.MemberAdded(ctx, userID, group.ID, group.Name)
		}
	}

	return nil
}

// GetMembers retrieves all members of a group. The caller must be a
// member to see the roster.
func (s *Service) GetMembers(ctx context.Context, actorID, groupID int64) ([]*Member, error) {
	if _, err := s.store.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	return s.store.GetMembers(ctx, groupID)
}

// IsMember reports whether a user belongs to a group.
func (s *Service) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return s.store.IsMember(ctx, groupID, userID)
}

func (s *Service) requireMember(ctx context.Context, groupID, userID int64) error {
	ok, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func (s *Service) checkUsersExist(ctx context.Context, userIDs []int64) error {
	missing, err := s.store.MissingUsers(ctx, userIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return errs.NotFound("user")
	}
	return nil
}
