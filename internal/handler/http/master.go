package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuadm/first-step-greet/internal/handler/http/middleware"
	"github.com/yuadm/first-step-greet/internal/handler/http/response"
	"github.com/yuadm/first-step-greet/internal/service/master"
)

type MasterHandler interface {
	ListBranches(w http.ResponseWriter, r *http.Request)
	GetBranch(w http.ResponseWriter, r *http.Request)
}

type masterHandlerImpl struct {
	masterService master.MasterService
}

func NewMasterHandler(masterService master.MasterService) MasterHandler {
	return &masterHandlerImpl{masterService: masterService}
}

// ListBranches handles GET /branches. Non-admins only see their own branch.
func (h *masterHandlerImpl) ListBranches(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.BranchScope(middleware.PrincipalFromRequest(r), nil)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	branches, err := h.masterService.ListBranches(r.Context(), scope)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, branches)
}

// GetBranch handles GET /branches/{id}
func (h *masterHandlerImpl) GetBranch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := middleware.BranchScope(middleware.PrincipalFromRequest(r), &id); err != nil {
		response.HandleError(w, err)
		return
	}

	b, err := h.masterService.GetBranch(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, b)
}
