package expense

import (
	"time"

	"github.com/govalues/money"
)

// Expense represents a shared expense in a group.
type Expense struct {
	ID        int64        `json:"id"`
	GroupID   int64        `json:"group_id"`
	PayerID   int64        `json:"payer_id"`
	Title     string       `json:"title"`
	Amount    money.Amount `json:"amount"`
	CreatedAt time.Time    `json:"created_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`

	Shares []*Share `json:"shares,omitempty"`
}

// Share is one participant's owed portion of an expense.
type Share struct {
	ExpenseID  int64        `json:"expense_id"`
	UserID     int64        `json:"user_id"`
	AmountOwed money.Amount `json:"amount_owed"`

	// Populated via JOIN
	Username string `json:"username,omitempty"`
}
