package settlement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fkhayef/divvy/internal/currency"
	"github.com/fkhayef/divvy/internal/errs"
)

// Repository handles settlement data persistence
type Repository struct {
	db   *sql.DB
	code string
}

// NewRepository creates a new settlement repository. Amounts read back
// from storage are denominated in the given currency code.
func NewRepository(db *sql.DB, currencyCode string) *Repository {
	return &Repository{db: db, code: currencyCode}
}

// Create inserts a new settlement into the database
func (r *Repository) Create(ctx context.Context, groupID, payerID, payeeID int64, amountCents int64) (*Settlement, error) {
	settlement := &Settlement{}
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO settlements (group_id, payer_id, payee_id, amount_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, group_id, payer_id, payee_id, amount_cents, created_at
	`, groupID, payerID, payeeID, amountCents).Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerID,
		&settlement.PayeeID,
		&cents,
		&settlement.CreatedAt,
	)
	if err != nil {
		return nil, errs.Storage("create settlement", err)
	}

	if settlement.Amount, err = currency.Amount(r.code, cents); err != nil {
		return nil, err
	}

	return settlement, nil
}

// GetByID retrieves a settlement by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	settlement := &Settlement{}
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount_cents, s.created_at,
		       payer.username, payee.username
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.id = $1
	`, id).Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerID,
		&settlement.PayeeID,
		&cents,
		&settlement.CreatedAt,
		&settlement.PayerUsername,
		&settlement.PayeeUsername,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettlementNotFound
		}
		return nil, errs.Storage("get settlement", err)
	}

	if settlement.Amount, err = currency.Amount(r.code, cents); err != nil {
		return nil, err
	}

	return settlement, nil
}

// ListByGroup retrieves all settlements in a group, newest first.
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Settlement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount_cents, s.created_at,
		       payer.username, payee.username
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.group_id = $1
		ORDER BY s.created_at DESC, s.id DESC
	`, groupID)
	if err != nil {
		return nil, errs.Storage("list settlements", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		settlement := &Settlement{}
		var cents int64
		if err := rows.Scan(
			&settlement.ID,
			&settlement.GroupID,
			&settlement.PayerID,
			&settlement.PayeeID,
			&cents,
			&settlement.CreatedAt,
			&settlement.PayerUsername,
			&settlement.PayeeUsername,
		); err != nil {
			return nil, errs.Storage("list settlements", err)
		}
		if settlement.Amount, err = currency.Amount(r.code, cents); err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list settlements", err)
	}

	return settlements, nil
}

// Delete removes a settlement, reverting its effect on derived
// balances.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM settlements WHERE id = $1`, id)
	if err != nil {
		return errs.Storage("delete settlement", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("delete settlement", err)
	}
	if affected == 0 {
		return ErrSettlementNotFound
	}

	return nil
}

// Involving returns every settlement row where the user is payer or
// payee. A groupID of zero means all groups.
func (r *Repository) Involving(ctx context.Context, userID, groupID int64) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, payer_id, payee_id, amount_cents
		FROM settlements
		WHERE (payer_id = $1 OR payee_id = $1)
		  AND ($2 = 0 OR group_id = $2)
	`, userID, groupID)
	if err != nil {
		return nil, errs.Storage("load settlements", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.GroupID,
			&rec.PayerID,
			&rec.PayeeID,
			&rec.AmountCents,
		); err != nil {
			return nil, errs.Storage("load settlements", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("load settlements", err)
	}

	return records, nil
}
