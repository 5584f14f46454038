package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuadm/first-step-greet/internal/domain/assessment"
	"github.com/yuadm/first-step-greet/internal/handler/http/response"
)

type AssessmentHandler interface {
	GetDraft(w http.ResponseWriter, r *http.Request)
	SaveDraft(w http.ResponseWriter, r *http.Request)
	DiscardDraft(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
}

type assessmentHandlerImpl struct {
	assessmentService assessment.AssessmentService
}

func NewAssessmentHandler(assessmentService assessment.AssessmentService) AssessmentHandler {
	return &assessmentHandlerImpl{assessmentService: assessmentService}
}

// formKind reads the {form} URL parameter.
func formKind(r *http.Request) (assessment.FormKind, error) {
	kind := assessment.FormKind(chi.URLParam(r, "form"))
	if !kind.Valid() {
		return "", assessment.ErrUnknownForm
	}
	return kind, nil
}

// GetDraft handles GET /forms/{form}/draft
func (h *assessmentHandlerImpl) GetDraft(w http.ResponseWriter, r *http.Request) {
	kind, err := formKind(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	draft, err := h.assessmentService.GetDraft(r.Context(), getUserIDFromContext(r), kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, draft)
}

// SaveDraft handles PUT /forms/{form}/draft
func (h *assessmentHandlerImpl) SaveDraft(w http.ResponseWriter, r *http.Request) {
	kind, err := formKind(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req assessment.SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveDraft decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = kind

	draft, err := h.assessmentService.SaveDraft(r.Context(), getUserIDFromContext(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Draft saved", draft)
}

// DiscardDraft handles DELETE /forms/{form}/draft
func (h *assessmentHandlerImpl) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	kind, err := formKind(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.assessmentService.DiscardDraft(r.Context(), getUserIDFromContext(r), kind); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Draft discarded", nil)
}

// Submit handles POST /forms/{form}/submit. An empty body submits the saved draft.
func (h *assessmentHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	kind, err := formKind(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req assessment.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Submit decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = kind

	result, err := h.assessmentService.Submit(r.Context(), getUserIDFromContext(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Form submitted", result)
}
