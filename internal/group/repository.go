package group

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/fkhayef/divvy/internal/errs"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new group and enrolls the creator as admin plus any
// initial members, all within a single transaction.
func (r *Repository) Create(ctx context.Context, name string, createdBy int64, memberIDs []int64) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Storage("create group", err)
	}
	defer tx.Rollback()

	group := &Group{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO groups (name, created_by)
		VALUES ($1, $2)
		RETURNING id, name, created_by, created_at
	`, name, createdBy).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, errs.Storage("create group", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
	`, group.ID, createdBy, MemberRoleAdmin)
	if err != nil {
		return nil, errs.Storage("create group", err)
	}

	for _, userID := range memberIDs {
		if userID == createdBy {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, user_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_id, user_id) DO NOTHING
		`, group.ID, userID, MemberRoleMember)
		if err != nil {
			return nil, errs.Storage("create group", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Storage("create group", err)
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	group := &Group{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_by, created_at
		FROM groups
		WHERE id = $1
	`, id).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, errs.Storage("get group", err)
	}

	return group, nil
}

// ListByUserID retrieves all groups the user belongs to, newest first.
func (r *Repository) ListByUserID(ctx context.Context, userID int64) ([]*Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.created_by, g.created_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC, g.id DESC
	`, userID)
	if err != nil {
		return nil, errs.Storage("list groups", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.CreatedBy,
			&group.CreatedAt,
		); err != nil {
			return nil, errs.Storage("list groups", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list groups", err)
	}

	return groups, nil
}

// AddMembers enrolls users into a group. Users that are already members
// are skipped, so the operation is idempotent.
func (r *Repository) AddMembers(ctx context.Context, groupID int64, userIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Storage("add members", err)
	}
	defer tx.Rollback()

	for _, userID := range userIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, user_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_id, user_id) DO NOTHING
		`, groupID, userID, MemberRoleMember)
		if err != nil {
			return errs.Storage("add members", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Storage("add members", err)
	}

	return nil
}

// GetMembers retrieves all members of a group in join order.
func (r *Repository) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gm.group_id, gm.user_id, gm.role, gm.joined_at, u.username
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at, gm.user_id
	`, groupID)
	if err != nil {
		return nil, errs.Storage("get members", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
			&member.Username,
		); err != nil {
			return nil, errs.Storage("get members", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("get members", err)
	}

	return members, nil
}

// IsMember reports whether a user belongs to a group.
func (r *Repository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM group_members
			WHERE group_id = $1 AND user_id = $2
		)
	`, groupID, userID).Scan(&exists)
	if err != nil {
		return false, errs.Storage("check membership", err)
	}
	return exists, nil
}

// MissingUsers returns the subset of the given IDs that do not exist
// in the users table.
func (r *Repository) MissingUsers(ctx context.Context, userIDs []int64) ([]int64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM users WHERE id = ANY($1)
	`, pq.Array(userIDs))
	if err != nil {
		return nil, errs.Storage("check users", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(userIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Storage("check users", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("check users", err)
	}

	var missing []int64
	for _, id := range userIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
