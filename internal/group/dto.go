package group

import "encoding/json"

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name    string  `json:"name"`
	UserIDs []int64 `json:"user_ids,omitempty"`
}

// AddMembersRequest represents the request to add members to a group
type AddMembersRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

// GroupResponse represents the response for a group. TotalBalance is
// the caller's net position within the group and is only populated on
// the group list.
type GroupResponse struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	CreatedBy    int64             `json:"created_by"`
	CreatedAt    string            `json:"created_at"`
	TotalBalance json.Number       `json:"total_balance,omitempty" swaggertype:"number"`
	Members      []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	UserID   int64      `json:"user_id"`
	Username string     `json:"username"`
	Role     MemberRole `json:"role"`
	JoinedAt string     `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Username: m.Username,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
