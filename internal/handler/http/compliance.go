package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/handler/http/middleware"
	"github.com/yuadm/first-step-greet/internal/handler/http/response"
)

const (
	maxEvidenceUpload = 10 << 20
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ComplianceHandler interface {
	// Types
	ListTypes(w http.ResponseWriter, r *http.Request)
	CreateType(w http.ResponseWriter, r *http.Request)
	GetType(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)

	// Periods
	ListPeriods(w http.ResponseWriter, r *http.Request)
	ParsePeriod(w http.ResponseWriter, r *http.Request)
	GetPeriodStatus(w http.ResponseWriter, r *http.Request)
	ExportPeriodStatus(w http.ResponseWriter, r *http.Request)

	// Records
	UpsertRecord(w http.ResponseWriter, r *http.Request)
	DeleteRecord(w http.ResponseWriter, r *http.Request)
	AttachEvidence(w http.ResponseWriter, r *http.Request)
}

type complianceHandlerImpl struct {
	complianceService compliance.Service
}

func NewComplianceHandler(complianceService compliance.Service) ComplianceHandler {
	return &complianceHandlerImpl{complianceService: complianceService}
}

// ListTypes handles GET /compliance/types?active_only=
func (h *complianceHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.complianceService.ListTypes(r.Context(), getBoolQueryParam(r, "active_only", false))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, types, &response.Meta{TotalItems: int64(len(types))})
}

// CreateType handles POST /compliance/types
func (h *complianceHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req compliance.CreateTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateType decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.complianceService.CreateType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Compliance type created successfully", created)
}

// GetType handles GET /compliance/types/{id}
func (h *complianceHandlerImpl) GetType(w http.ResponseWriter, r *http.Request) {
	t, err := h.complianceService.GetType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, t)
}

// UpdateType handles PUT /compliance/types/{id}
func (h *complianceHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	var req compliance.UpdateTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateType decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.complianceService.UpdateType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Compliance type updated successfully", updated)
}

// ListPeriods handles GET /compliance/types/{id}/periods?year=
func (h *complianceHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "year must be a number", map[string]string{"year": "year must be a number"})
			return
		}
		year = parsed
	}

	periods, err := h.complianceService.ListPeriods(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, periods)
}

// ParsePeriod handles GET /compliance/periods/parse?id=&frequency=
func (h *complianceHandlerImpl) ParsePeriod(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	parsed, err := h.complianceService.ParsePeriod(r.Context(), q.Get("id"), q.Get("frequency"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, parsed)
}

// periodStatusRequest reads the type, period and branch scope of a status query.
func periodStatusRequest(r *http.Request) (compliance.PeriodStatusRequest, error) {
	branchID, err := middleware.BranchScope(middleware.PrincipalFromRequest(r), getOptionalQueryParam(r, "branch_id"))
	if err != nil {
		return compliance.PeriodStatusRequest{}, err
	}
	return compliance.PeriodStatusRequest{
		TypeID:           chi.URLParam(r, "id"),
		PeriodIdentifier: r.URL.Query().Get("period"),
		BranchID:         branchID,
	}, nil
}

// GetPeriodStatus handles GET /compliance/types/{id}/status?period=&branch_id=
func (h *complianceHandlerImpl) GetPeriodStatus(w http.ResponseWriter, r *http.Request) {
	req, err := periodStatusRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.complianceService.GetPeriodStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

// ExportPeriodStatus handles GET /compliance/types/{id}/status/export?period=&branch_id=
func (h *complianceHandlerImpl) ExportPeriodStatus(w http.ResponseWriter, r *http.Request) {
	req, err := periodStatusRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Buffer the workbook so a failure can still be reported as JSON.
	var buf bytes.Buffer
	filename, err := h.complianceService.ExportPeriodStatus(r.Context(), req, &buf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("Failed to write compliance export", "filename", filename, "error", err)
	}
}

// UpsertRecord handles PUT /compliance/types/{id}/records
func (h *complianceHandlerImpl) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req compliance.UpsertRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpsertRecord decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.TypeID = chi.URLParam(r, "id")
	if userID := getUserIDFromContext(r); userID != "" {
		req.CompletedBy = &userID
	}

	record, err := h.complianceService.UpsertRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Compliance record saved", record)
}

// DeleteRecord handles DELETE /compliance/types/{id}/records/{recordID}
func (h *complianceHandlerImpl) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.complianceService.DeleteRecord(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "recordID")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Compliance record deleted", nil)
}

// AttachEvidence handles POST /compliance/types/{id}/records/{recordID}/evidence
func (h *complianceHandlerImpl) AttachEvidence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEvidenceUpload+(1<<20))
	if err := r.ParseMultipartForm(maxEvidenceUpload); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Evidence file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Failed to read evidence file", nil)
		return
	}
	defer file.Close()

	record, err := h.complianceService.AttachEvidence(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "recordID"), file, fileHeader.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Evidence uploaded", record)
}
