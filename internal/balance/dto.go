package balance

import (
	"encoding/json"
	"sort"

	"github.com/fkhayef/divvy/internal/currency"
)

// DashboardResponse is the balance view returned to the client.
type DashboardResponse struct {
	NetBalance json.Number            `json:"net_balance" swaggertype:"number"`
	TotalOwed  json.Number            `json:"total_owed" swaggertype:"number"`
	TotalDue   json.Number            `json:"total_due" swaggertype:"number"`
	Users      []*UserBalanceResponse `json:"users"`
}

// UserBalanceResponse is one counterparty line on the dashboard.
type UserBalanceResponse struct {
	UserID     int64       `json:"user_id"`
	Username   string      `json:"username"`
	NetBalance json.Number `json:"net_balance" swaggertype:"number"`
}

// ToResponse renders a computed balance as the dashboard shape.
// Counterparties are listed in ascending user ID order.
func (r *Result) ToResponse() *DashboardResponse {
	resp := &DashboardResponse{
		NetBalance: formatCents(r.Balance.NetBalance),
		TotalOwed:  formatCents(r.Balance.TotalOwed),
		TotalDue:   formatCents(r.Balance.TotalDue),
		Users:      []*UserBalanceResponse{},
	}

	for id, cents := range r.Balance.Buckets {
		resp.Users = append(resp.Users, &UserBalanceResponse{
			UserID:     id,
			Username:   r.Usernames[id],
			NetBalance: formatCents(cents),
		})
	}
	sort.Slice(resp.Users, func(i, j int) bool {
		return resp.Users[i].UserID < resp.Users[j].UserID
	})

	return resp
}

func formatCents(cents int64) json.Number {
	return json.Number(currency.FormatCents(cents))
}
