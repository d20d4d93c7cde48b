package group

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/divvy/internal/currency"
	"github.com/fkhayef/divvy/pkg/middleware"
	"github.com/fkhayef/divvy/pkg/response"
)

// Balances supplies the caller's net position within a group for the
// group list.
type Balances interface {
	NetBalance(ctx context.Context, userID, groupID int64) (int64, error)
}

// Handler handles HTTP requests for group operations
type Handler struct {
	service  *Service
	balances Balances
}

// NewHandler creates a new group handler
func NewHandler(service *Service, balances Balances) *Handler {
	return &Handler{service: service, balances: balances}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}/members", h.GetMembers)
	r.Put("/{id}/members", h.AddMembers)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a new group with the caller enrolled as admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// List handles GET /groups
// @Summary      List my groups
// @Description  Get all groups the current user belongs to, with the caller's net balance in each
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Security     BearerAuth
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groups, err := h.service.ListByUserID(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	groupResponses := make([]*GroupResponse, len(groups))
	for i, group := range groups {
		resp := group.ToResponse()
		net, err := h.balances.NetBalance(r.Context(), userID, group.ID)
		if err != nil {
			response.FromError(w, err)
			return
		}
		resp.TotalBalance = json.Number(currency.FormatCents(net))
		groupResponses[i] = resp
	}

	response.JSON(w, http.StatusOK, groupResponses)
}

// GetMembers handles GET /groups/{id}/members
// @Summary      List group members
// @Description  Get the member roster of a group in join order
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members [get]
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	members, err := h.service.GetMembers(r.Context(), userID, groupID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			response.Forbidden(w, err.Error())
			return
		}
		response.FromError(w, err)
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}

// AddMembers handles PUT /groups/{id}/members
// @Summary      Add members to group
// @Description  Enroll users into the group; existing members are skipped
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body AddMembersRequest true "Members to add"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members [put]
func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req AddMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.AddMembers(r.Context(), userID, groupID, &req); err != nil {
		if errors.Is(err, ErrNotMember) {
			response.Forbidden(w, err.Error())
			return
		}
		response.FromError(w, err)
		return
	}

	members, err := h.service.GetMembers(r.Context(), userID, groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}
