package settlement

import (
	"encoding/json"

	"github.com/fkhayef/divvy/internal/currency"
)

// CreateSettlementRequest represents the request to record a payment
// from paid_by to settled_with. The amount is a decimal string or
// number with at most two decimal places.
type CreateSettlementRequest struct {
	GroupID     int64       `json:"group_id"`
	Amount      json.Number `json:"amount" swaggertype:"number"`
	PaidBy      int64       `json:"paid_by"`
	SettledWith int64       `json:"settled_with"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID            int64       `json:"id"`
	GroupID       int64       `json:"group_id"`
	PaidBy        int64       `json:"paid_by"`
	PayerUsername string      `json:"payer_username,omitempty"`
	SettledWith   int64       `json:"settled_with"`
	PayeeUsername string      `json:"payee_username,omitempty"`
	Amount        json.Number `json:"amount" swaggertype:"number"`
	CreatedAt     string      `json:"created_at"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:            s.ID,
		GroupID:       s.GroupID,
		PaidBy:        s.PayerID,
		PayerUsername: s.PayerUsername,
		SettledWith:   s.PayeeID,
		PayeeUsername: s.PayeeUsername,
		Amount:        json.Number(currency.Format(s.Amount)),
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
