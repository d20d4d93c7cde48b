package expense

import (
	"encoding/json"

	"github.com/fkhayef/divvy/internal/currency"
)

// CreateExpenseRequest represents the request to create an expense.
// The amount is a decimal string or number with at most two decimal
// places. split_with lists every participant sharing the expense,
// payer included if they carry a share themselves.
type CreateExpenseRequest struct {
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount" swaggertype:"number"`
	GroupID   int64       `json:"group_id"`
	PaidBy    int64       `json:"paid_by"`
	SplitWith []int64     `json:"split_with"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID            int64            `json:"id"`
	GroupID       int64            `json:"group_id"`
	PaidBy        int64            `json:"paid_by"`
	PayerUsername string           `json:"payer_username,omitempty"`
	Title         string           `json:"title"`
	Amount        json.Number      `json:"amount" swaggertype:"number"`
	CreatedAt     string           `json:"created_at"`
	Shares        []*ShareResponse `json:"shares,omitempty"`
}

// ShareResponse represents one participant's share of an expense
type ShareResponse struct {
	UserID     int64       `json:"user_id"`
	Username   string      `json:"username,omitempty"`
	AmountOwed json.Number `json:"amount_owed" swaggertype:"number"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		PaidBy:        e.PayerID,
		PayerUsername: e.PayerUsername,
		Title:         e.Title,
		Amount:        json.Number(currency.Format(e.Amount)),
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for _, s := range e.Shares {
		resp.Shares = append(resp.Shares, s.ToResponse())
	}
	return resp
}

// ToResponse converts a Share model to a ShareResponse DTO
func (s *Share) ToResponse() *ShareResponse {
	return &ShareResponse{
		UserID:     s.UserID,
		Username:   s.Username,
		AmountOwed: json.Number(currency.Format(s.AmountOwed)),
	}
}
