package balance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/divvy/pkg/middleware"
	"github.com/fkhayef/divvy/pkg/response"
)

// Handler handles HTTP requests for balance views
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetDashboard)
	r.Get("/group/{groupId}", h.GetGroupDashboard)

	return r
}

// GetDashboard handles GET /balances
// @Summary      Get balance dashboard
// @Description  Get the caller's net balance, totals, and per-counterparty breakdown across all their groups
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=DashboardResponse}
// @Security     BearerAuth
// @Router       /balances [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	result, err := h.service.Compute(r.Context(), userID, 0)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result.ToResponse())
}

// GetGroupDashboard handles GET /balances/group/{groupId}
// @Summary      Get group balance dashboard
// @Description  Get the caller's balances scoped to one group
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=DashboardResponse}
// @Failure      403 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GetGroupDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	result, err := h.service.Compute(r.Context(), userID, groupID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			response.Forbidden(w, err.Error())
			return
		}
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result.ToResponse())
}
