package compliance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/pkg/clock"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
	"github.com/yuadm/first-step-greet/internal/pkg/period"
	"github.com/yuadm/first-step-greet/internal/pkg/validator"
	"github.com/yuadm/first-step-greet/internal/service/file"
)

type ComplianceServiceImpl struct {
	typeRepo    compliance.TypeRepository
	recordRepo  compliance.RecordRepository
	subjects    compliance.SubjectSource
	fileService file.FileService
	clock       clock.Clock
	notifier    compliance.Notifier
}

func NewComplianceService(
	typeRepo compliance.TypeRepository,
	recordRepo compliance.RecordRepository,
	subjects compliance.SubjectSource,
	fileService file.FileService,
	clk clock.Clock,
) *ComplianceServiceImpl {
	return &ComplianceServiceImpl{
		typeRepo:    typeRepo,
		recordRepo:  recordRepo,
		subjects:    subjects,
		fileService: fileService,
		clock:       clk,
	}
}

// SetNotifier registers the listener told about record changes. The refresher
// depends on this service, so it is attached after construction.
func (s *ComplianceServiceImpl) SetNotifier(n compliance.Notifier) {
	s.notifier = n
}

// notify reports a change of typeID once the transaction on ctx, if any,
// has committed.
func (s *ComplianceServiceImpl) notify(ctx context.Context, typeID string) {
	if s.notifier == nil {
		return
	}
	database.AfterCommit(ctx, func() {
		s.notifier.RecordsChanged(typeID)
	})
}

// ==================== TYPE OPERATIONS ====================

func (s *ComplianceServiceImpl) CreateType(ctx context.Context, req compliance.CreateTypeRequest) (compliance.TypeResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.TypeResponse{}, err
	}

	freq, err := period.ParseFrequency(req.Frequency)
	if err != nil {
		return compliance.TypeResponse{}, err
	}

	created, err := s.typeRepo.Create(ctx, compliance.Type{
		Name:        req.Name,
		Description: req.Description,
		Frequency:   freq,
		TargetTable: compliance.TargetTable(req.TargetTable),
		IsActive:    true,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return compliance.TypeResponse{}, compliance.ErrTypeNameExists
		}
		return compliance.TypeResponse{}, fmt.Errorf("failed to create compliance type: %w", err)
	}

	slog.Info("Created compliance type", "compliance_type_id", created.ID, "frequency", created.Frequency)
	return compliance.NewTypeResponse(created), nil
}

func (s *ComplianceServiceImpl) UpdateType(ctx context.Context, req compliance.UpdateTypeRequest) (compliance.TypeResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.TypeResponse{}, err
	}

	existing, err := s.typeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return compliance.TypeResponse{}, err
	}

	activeChanged := false
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.IsActive != nil && *req.IsActive != existing.IsActive {
		existing.IsActive = *req.IsActive
		activeChanged = true
	}

	if err := s.typeRepo.Update(ctx, existing); err != nil {
		if isUniqueViolation(err) {
			return compliance.TypeResponse{}, compliance.ErrTypeNameExists
		}
		return compliance.TypeResponse{}, fmt.Errorf("failed to update compliance type: %w", err)
	}

	if activeChanged {
		s.notify(ctx, existing.ID)
	}

	updated, err := s.typeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return compliance.TypeResponse{}, err
	}
	return compliance.NewTypeResponse(updated), nil
}

func (s *ComplianceServiceImpl) GetType(ctx context.Context, id string) (compliance.TypeResponse, error) {
	t, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return compliance.TypeResponse{}, err
	}
	return compliance.NewTypeResponse(t), nil
}

func (s *ComplianceServiceImpl) ListTypes(ctx context.Context, activeOnly bool) ([]compliance.TypeResponse, error) {
	types, err := s.typeRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance types: %w", err)
	}

	responses := make([]compliance.TypeResponse, 0, len(types))
	for _, t := range types {
		responses = append(responses, compliance.NewTypeResponse(t))
	}
	return responses, nil
}

// ==================== PERIOD OPERATIONS ====================

func (s *ComplianceServiceImpl) GetPeriodStatus(ctx context.Context, req compliance.PeriodStatusRequest) (compliance.PeriodStatusResponse, error) {
	t, err := s.typeRepo.GetByID(ctx, req.TypeID)
	if err != nil {
		return compliance.PeriodStatusResponse{}, err
	}

	now := s.clock.Now()
	periodID := req.PeriodIdentifier
	if periodID == "" {
		periodID = period.Current(t.Frequency, now)
	}

	id, err := period.Parse(periodID, t.Frequency.String())
	if err != nil {
		return compliance.PeriodStatusResponse{}, fmt.Errorf("%w: %v", compliance.ErrInvalidPeriod, err)
	}
	periodID = id.String()

	subjects, err := s.subjects.ListSubjects(ctx, t.TargetTable, compliance.SubjectFilter{
		BranchID:   req.BranchID,
		ActiveOnly: true,
	})
	if err != nil {
		return compliance.PeriodStatusResponse{}, err
	}

	var records []compliance.Record
	if req.BranchID == nil || len(subjects) > 0 {
		filter := compliance.RecordFilter{PeriodIdentifier: periodID}
		if req.BranchID != nil {
			filter.EntityIDs = subjectIDs(subjects)
		}
		records, err = s.recordRepo.List(ctx, t.TargetTable, t.ID, filter)
		if err != nil {
			return compliance.PeriodStatusResponse{}, fmt.Errorf("failed to list compliance records: %w", err)
		}
	}

	entries := ResolveStatuses(subjects, records, periodID, t.Frequency.String(), now)

	responses := make([]compliance.StatusEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := compliance.StatusEntryResponse{Subject: e.Subject, Status: e.Status}
		if e.Record != nil {
			rec := compliance.NewRecordResponse(*e.Record)
			resp.Record = &rec
		}
		responses = append(responses, resp)
	}

	return compliance.PeriodStatusResponse{
		Type:             compliance.NewTypeResponse(t),
		PeriodIdentifier: periodID,
		Window:           id.Window(now.Location()),
		PeriodOverdue:    period.IsOverdue(periodID, t.Frequency.String(), now),
		Entries:          responses,
		Summary:          Summarize(entries),
	}, nil
}

func (s *ComplianceServiceImpl) ListPeriods(ctx context.Context, typeID string, year int) (compliance.ListPeriodsResponse, error) {
	t, err := s.typeRepo.GetByID(ctx, typeID)
	if err != nil {
		return compliance.ListPeriodsResponse{}, err
	}

	now := s.clock.Now()
	if year == 0 {
		year = now.Year()
	}
	if !validator.IsValidYear(year) {
		return compliance.ListPeriodsResponse{}, validator.ValidationErrors{{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		}}
	}

	records, err := s.recordRepo.List(ctx, t.TargetTable, t.ID, compliance.RecordFilter{PeriodPrefix: fmt.Sprintf("%04d", year)})
	if err != nil {
		return compliance.ListPeriodsResponse{}, fmt.Errorf("failed to list compliance records: %w", err)
	}
	completedByPeriod := make(map[string]int)
	for _, r := range records {
		if r.IsCompleted() {
			completedByPeriod[r.PeriodIdentifier]++
		}
	}

	current := period.Current(t.Frequency, now)
	ids := period.List(t.Frequency, year)
	periods := make([]compliance.PeriodInfo, 0, len(ids))
	for _, id := range ids {
		w, err := period.WindowFor(id, t.Frequency.String(), now.Location())
		if err != nil {
			return compliance.ListPeriodsResponse{}, err
		}
		periods = append(periods, compliance.PeriodInfo{
			Identifier: id,
			Window:     w,
			IsOverdue:  period.IsOverdue(id, t.Frequency.String(), now),
			IsCurrent:  id == current,
			Completed:  completedByPeriod[id],
		})
	}

	return compliance.ListPeriodsResponse{
		ComplianceTypeID: t.ID,
		Frequency:        t.Frequency.String(),
		Year:             year,
		Periods:          periods,
	}, nil
}

func (s *ComplianceServiceImpl) ParsePeriod(ctx context.Context, identifier, frequency string) (compliance.ParsePeriodResponse, error) {
	id, err := period.Parse(identifier, frequency)
	if err != nil {
		return compliance.ParsePeriodResponse{}, fmt.Errorf("%w: %v", compliance.ErrInvalidPeriod, err)
	}

	now := s.clock.Now()
	return compliance.ParsePeriodResponse{
		Identifier: id.String(),
		Frequency:  id.Frequency.String(),
		Window:     id.Window(now.Location()),
		IsOverdue:  period.IsOverdue(id.String(), id.Frequency.String(), now),
	}, nil
}

// ==================== RECORD OPERATIONS ====================

func (s *ComplianceServiceImpl) UpsertRecord(ctx context.Context, req compliance.UpsertRecordRequest) (compliance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.RecordResponse{}, err
	}

	t, err := s.typeRepo.GetByID(ctx, req.TypeID)
	if err != nil {
		return compliance.RecordResponse{}, err
	}
	if !t.IsActive {
		return compliance.RecordResponse{}, compliance.ErrTypeInactive
	}

	id, err := period.Parse(req.PeriodIdentifier, t.Frequency.String())
	if err != nil {
		return compliance.RecordResponse{}, fmt.Errorf("%w: %v", compliance.ErrInvalidPeriod, err)
	}

	exists, err := s.subjects.SubjectExists(ctx, t.TargetTable, req.EntityID)
	if err != nil {
		return compliance.RecordResponse{}, err
	}
	if !exists {
		return compliance.RecordResponse{}, compliance.ErrEntityNotFound
	}

	record := compliance.Record{
		ComplianceTypeID: t.ID,
		EntityID:         req.EntityID,
		PeriodIdentifier: id.String(),
		Status:           req.Status,
		IsOverdue:        req.IsOverdue,
		Notes:            req.Notes,
		CompletedBy:      req.CompletedBy,
	}
	if req.CompletionDate != nil {
		completed, _ := validator.IsValidDate(*req.CompletionDate)
		record.CompletionDate = &completed
		if record.Status == "" {
			record.Status = string(compliance.StatusCompleted)
		}
	}

	saved, err := s.recordRepo.Upsert(ctx, t.TargetTable, record)
	if err != nil {
		return compliance.RecordResponse{}, fmt.Errorf("failed to save compliance record: %w", err)
	}

	slog.Info("Saved compliance record",
		"compliance_type_id", t.ID,
		"entity_id", saved.EntityID,
		"period", saved.PeriodIdentifier,
		"status", saved.Status,
	)
	s.notify(ctx, t.ID)

	return compliance.NewRecordResponse(saved), nil
}

func (s *ComplianceServiceImpl) DeleteRecord(ctx context.Context, typeID, recordID string) error {
	t, record, err := s.recordOfType(ctx, typeID, recordID)
	if err != nil {
		return err
	}

	if err := s.recordRepo.Delete(ctx, t.TargetTable, record.ID); err != nil {
		return err
	}

	if record.EvidencePath != nil {
		if err := s.fileService.DeleteFile(ctx, *record.EvidencePath); err != nil {
			slog.Warn("Failed to delete evidence file", "record_id", record.ID, "path", *record.EvidencePath, "error", err)
		}
	}

	s.notify(ctx, t.ID)
	return nil
}

func (s *ComplianceServiceImpl) AttachEvidence(ctx context.Context, typeID, recordID string, content io.Reader, filename string) (compliance.RecordResponse, error) {
	t, record, err := s.recordOfType(ctx, typeID, recordID)
	if err != nil {
		return compliance.RecordResponse{}, err
	}

	path, err := s.fileService.UploadEvidence(ctx, t.ID, record.ID, content, filename)
	if err != nil {
		if errors.Is(err, file.ErrUnsupportedFileType) {
			return compliance.RecordResponse{}, fmt.Errorf("%w: %v", compliance.ErrInvalidEvidence, err)
		}
		return compliance.RecordResponse{}, err
	}

	if err := s.recordRepo.UpdateEvidence(ctx, t.TargetTable, record.ID, path); err != nil {
		if delErr := s.fileService.DeleteFile(ctx, path); delErr != nil {
			slog.Warn("Failed to remove orphaned evidence file", "path", path, "error", delErr)
		}
		return compliance.RecordResponse{}, err
	}

	if record.EvidencePath != nil && *record.EvidencePath != path {
		if err := s.fileService.DeleteFile(ctx, *record.EvidencePath); err != nil {
			slog.Warn("Failed to delete replaced evidence file", "record_id", record.ID, "path", *record.EvidencePath, "error", err)
		}
	}

	record.EvidencePath = &path
	record.UpdatedAt = s.clock.Now()
	return compliance.NewRecordResponse(record), nil
}

// recordOfType loads a record and checks it belongs to the compliance type.
func (s *ComplianceServiceImpl) recordOfType(ctx context.Context, typeID, recordID string) (compliance.Type, compliance.Record, error) {
	t, err := s.typeRepo.GetByID(ctx, typeID)
	if err != nil {
		return compliance.Type{}, compliance.Record{}, err
	}

	record, err := s.recordRepo.GetByID(ctx, t.TargetTable, recordID)
	if err != nil {
		return compliance.Type{}, compliance.Record{}, err
	}
	if record.ComplianceTypeID != t.ID {
		return compliance.Type{}, compliance.Record{}, compliance.ErrRecordNotFound
	}
	return t, record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// exportTimestamp names export files after the service clock.
func (s *ComplianceServiceImpl) exportTimestamp() string {
	return s.clock.Now().Format("20060102-150405")
}

var _ compliance.Service = (*ComplianceServiceImpl)(nil)
