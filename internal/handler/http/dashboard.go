package http

import (
	"net/http"

	"github.com/yuadm/first-step-greet/internal/domain/dashboard"
	"github.com/yuadm/first-step-greet/internal/handler/http/middleware"
	"github.com/yuadm/first-step-greet/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetComplianceOverview returns current-period summaries for every active type
	GetComplianceOverview(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetComplianceOverview handles GET /dashboard/compliance?branch_id=
func (h *dashboardHandlerImpl) GetComplianceOverview(w http.ResponseWriter, r *http.Request) {
	branchID, err := middleware.BranchScope(middleware.PrincipalFromRequest(r), getOptionalQueryParam(r, "branch_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.dashboardService.GetComplianceOverview(r.Context(), branchID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
