package expense

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/fkhayef/divvy/internal/currency"
	"github.com/fkhayef/divvy/internal/errs"
	"github.com/fkhayef/divvy/internal/expense/split"
)

// ShareRecord is a flattened share row used by the balance projection.
// Amounts stay in integer cents so folds over many records are exact.
type ShareRecord struct {
	ExpenseID       int64
	GroupID         int64
	PayerID         int64
	UserID          int64
	AmountOwedCents int64
}

// Repository handles expense and share data persistence
type Repository struct {
	db   *sql.DB
	code string
}

// NewRepository creates a new expense repository. Amounts read back
// from storage are denominated in the given currency code.
func NewRepository(db *sql.DB, currencyCode string) *Repository {
	return &Repository{db: db, code: currencyCode}
}

// Create inserts an expense together with all of its participant
// shares in a single transaction. Either everything is written or
// nothing is.
func (r *Repository) Create(ctx context.Context, groupID, payerID int64, title string, amountCents int64, shares []split.Share) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Storage("create expense", err)
	}
	defer tx.Rollback()

	expense := &Expense{GroupID: groupID, PayerID: payerID, Title: title}
	var cents int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO expenses (group_id, payer_id, title, amount_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, amount_cents, created_at
	`, groupID, payerID, title, amountCents).Scan(
		&expense.ID,
		&cents,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, errs.Storage("create expense", err)
	}

	if expense.Amount, err = currency.Amount(r.code, cents); err != nil {
		return nil, err
	}

	for _, sh := range shares {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expense_shares (expense_id, user_id, amount_owed_cents)
			VALUES ($1, $2, $3)
		`, expense.ID, sh.UserID, sh.AmountOwed)
		if err != nil {
			return nil, errs.Storage("create expense share", err)
		}

		owed, err := currency.Amount(r.code, sh.AmountOwed)
		if err != nil {
			return nil, err
		}
		expense.Shares = append(expense.Shares, &Share{
			ExpenseID:  expense.ID,
			UserID:     sh.UserID,
			AmountOwed: owed,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Storage("create expense", err)
	}

	return expense, nil
}

// GetByID retrieves an expense with its shares.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	expense := &Expense{}
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.group_id, e.payer_id, e.title, e.amount_cents, e.created_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.id = $1
	`, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Title,
		&cents,
		&expense.CreatedAt,
		&expense.PayerUsername,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, errs.Storage("get expense", err)
	}

	if expense.Amount, err = currency.Amount(r.code, cents); err != nil {
		return nil, err
	}

	if expense.Shares, err = r.sharesByExpenseID(ctx, id); err != nil {
		return nil, err
	}

	return expense, nil
}

func (r *Repository) sharesByExpenseID(ctx context.Context, expenseID int64) ([]*Share, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.expense_id, s.user_id, s.amount_owed_cents, u.username
		FROM expense_shares s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = $1
		ORDER BY s.user_id
	`, expenseID)
	if err != nil {
		return nil, errs.Storage("get expense shares", err)
	}
	defer rows.Close()

	return scanShares(rows, r.code)
}

// ListByGroup retrieves a page of expenses in a group with their
// shares, newest first, along with the total expense count.
func (r *Repository) ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM expenses WHERE group_id = $1
	`, groupID).Scan(&total)
	if err != nil {
		return nil, 0, errs.Storage("count expenses", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.group_id, e.payer_id, e.title, e.amount_cents, e.created_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`, groupID, limit, offset)
	if err != nil {
		return nil, 0, errs.Storage("list expenses", err)
	}
	defer rows.Close()

	var expenses []*Expense
	var ids []int64
	byID := make(map[int64]*Expense)
	for rows.Next() {
		expense := &Expense{}
		var cents int64
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PayerID,
			&expense.Title,
			&cents,
			&expense.CreatedAt,
			&expense.PayerUsername,
		); err != nil {
			return nil, 0, errs.Storage("list expenses", err)
		}
		if expense.Amount, err = currency.Amount(r.code, cents); err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, expense)
		ids = append(ids, expense.ID)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errs.Storage("list expenses", err)
	}
	if len(expenses) == 0 {
		return expenses, total, nil
	}

	shareRows, err := r.db.QueryContext(ctx, `
		SELECT s.expense_id, s.user_id, s.amount_owed_cents, u.username
		FROM expense_shares s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = ANY($1)
		ORDER BY s.expense_id, s.user_id
	`, pq.Array(ids))
	if err != nil {
		return nil, 0, errs.Storage("list expense shares", err)
	}
	defer shareRows.Close()

	shares, err := scanShares(shareRows, r.code)
	if err != nil {
		return nil, 0, err
	}
	for _, sh := range shares {
		if e, ok := byID[sh.ExpenseID]; ok {
			e.Shares = append(e.Shares, sh)
		}
	}

	return expenses, total, nil
}

// Delete removes an expense; its shares go with it via cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return errs.Storage("delete expense", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("delete expense", err)
	}
	if affected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// SharesInvolving returns every share row from expenses where the user
// is either the payer or a participant. A groupID of zero means all
// groups.
func (r *Repository) SharesInvolving(ctx context.Context, userID, groupID int64) ([]ShareRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.expense_id, e.group_id, e.payer_id, s.user_id, s.amount_owed_cents
		FROM expense_shares s
		JOIN expenses e ON s.expense_id = e.id
		WHERE (e.payer_id = $1 OR s.user_id = $1)
		  AND ($2 = 0 OR e.group_id = $2)
	`, userID, groupID)
	if err != nil {
		return nil, errs.Storage("load shares", err)
	}
	defer rows.Close()

	var records []ShareRecord
	for rows.Next() {
		var rec ShareRecord
		if err := rows.Scan(
			&rec.ExpenseID,
			&rec.GroupID,
			&rec.PayerID,
			&rec.UserID,
			&rec.AmountOwedCents,
		); err != nil {
			return nil, errs.Storage("load shares", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("load shares", err)
	}

	return records, nil
}

func scanShares(rows *sql.Rows, code string) ([]*Share, error) {
	var shares []*Share
	for rows.Next() {
		share := &Share{}
		var cents int64
		if err := rows.Scan(
			&share.ExpenseID,
			&share.UserID,
			&cents,
			&share.Username,
		); err != nil {
			return nil, errs.Storage("scan expense share", err)
		}
		owed, err := currency.Amount(code, cents)
		if err != nil {
			return nil, err
		}
		share.AmountOwed = owed
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("scan expense share", err)
	}
	return shares, nil
}
