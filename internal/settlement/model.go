package settlement

import (
	"time"

	"github.com/govalues/money"
)

// Settlement represents a direct payment between two users that
// offsets previously accrued debt within a group.
type Settlement struct {
	ID        int64        `json:"id"`
	GroupID   int64        `json:"group_id"`
	PayerID   int64        `json:"payer_id"`
	PayeeID   int64        `json:"payee_id"`
	Amount    money.Amount `json:"amount"`
	CreatedAt time.Time    `json:"created_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
	PayeeUsername string `json:"payee_username,omitempty"`
}

// Record is a flattened settlement row used by the balance projection.
// Amounts stay in integer cents so folds over many records are exact.
type Record struct {
	ID          int64
	GroupID     int64
	PayerID     int64
	PayeeID     int64
	AmountCents int64
}
