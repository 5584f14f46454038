package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuadm/first-step-greet/internal/domain/assessment"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/pkg/clock"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
	"github.com/yuadm/first-step-greet/internal/pkg/wizard"
)

// compliant is the data of a form that completes a compliance record.
type compliant interface {
	Target() assessment.Subject
	Notes() string
}

type assessmentServiceImpl struct {
	transactor        database.Transactor
	drafts            wizard.DraftStore
	applicationRepo   assessment.ApplicationRepository
	complianceService compliance.Service
	clock             clock.Clock
}

func NewAssessmentService(
	transactor database.Transactor,
	drafts wizard.DraftStore,
	applicationRepo assessment.ApplicationRepository,
	complianceService compliance.Service,
	clk clock.Clock,
) assessment.AssessmentService {
	return &assessmentServiceImpl{
		transactor:        transactor,
		drafts:            drafts,
		applicationRepo:   applicationRepo,
		complianceService: complianceService,
		clock:             clk,
	}
}

// GetDraft returns the saved draft, or a fresh form on step 1 when none exists.
func (s *assessmentServiceImpl) GetDraft(ctx context.Context, ownerID string, kind assessment.FormKind) (assessment.DraftResponse, error) {
	if !kind.Valid() {
		return assessment.DraftResponse{}, assessment.ErrUnknownForm
	}

	draft, err := s.drafts.Load(ctx, ownerID, kind.DraftKey())
	if err != nil {
		if !errors.Is(err, wizard.ErrDraftNotFound) {
			return assessment.DraftResponse{}, fmt.Errorf("failed to load draft: %w", err)
		}
		draft = wizard.Draft{OwnerID: ownerID, FormKey: kind.DraftKey(), CurrentStep: 1, Data: json.RawMessage("{}")}
	}

	f, err := newForm(kind, draft.Data, draft.CurrentStep)
	if err != nil {
		return assessment.DraftResponse{}, err
	}

	resp := draftResponse(kind, f, draft.Data)
	if !draft.UpdatedAt.IsZero() {
		updatedAt := draft.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp, nil
}

// SaveDraft stores the data, then applies the navigation action.
func (s *assessmentServiceImpl) SaveDraft(ctx context.Context, ownerID string, req assessment.SaveDraftRequest) (assessment.DraftResponse, error) {
	if err := req.Validate(); err != nil {
		return assessment.DraftResponse{}, err
	}

	step := 1
	existing, err := s.drafts.Load(ctx, ownerID, req.Kind.DraftKey())
	switch {
	case err == nil:
		step = existing.CurrentStep
	case !errors.Is(err, wizard.ErrDraftNotFound):
		return assessment.DraftResponse{}, fmt.Errorf("failed to load draft: %w", err)
	}

	f, err := newForm(req.Kind, req.Data, step)
	if err != nil {
		return assessment.DraftResponse{}, err
	}
	if err := f.navigate(req.Action, req.Step); err != nil {
		return assessment.DraftResponse{}, err
	}

	draft := wizard.Draft{
		OwnerID:     ownerID,
		FormKey:     req.Kind.DraftKey(),
		CurrentStep: f.current(),
		Data:        req.Data,
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return assessment.DraftResponse{}, fmt.Errorf("failed to save draft: %w", err)
	}

	resp := draftResponse(req.Kind, f, draft.Data)
	resp.UpdatedAt = &draft.UpdatedAt
	return resp, nil
}

func (s *assessmentServiceImpl) DiscardDraft(ctx context.Context, ownerID string, kind assessment.FormKind) error {
	if !kind.Valid() {
		return assessment.ErrUnknownForm
	}
	return s.drafts.Clear(ctx, ownerID, kind.DraftKey())
}

// Submit validates every required step, then persists the form and clears the
// draft in one transaction.
func (s *assessmentServiceImpl) Submit(ctx context.Context, ownerID string, req assessment.SubmitRequest) (assessment.SubmitResponse, error) {
	if err := req.Validate(); err != nil {
		return assessment.SubmitResponse{}, err
	}

	data := req.Data
	if len(data) == 0 {
		draft, err := s.drafts.Load(ctx, ownerID, req.Kind.DraftKey())
		if err != nil {
			if errors.Is(err, wizard.ErrDraftNotFound) {
				return assessment.SubmitResponse{}, assessment.ErrDraftNotFound
			}
			return assessment.SubmitResponse{}, fmt.Errorf("failed to load draft: %w", err)
		}
		data = draft.Data
	}

	f, err := newForm(req.Kind, data, 0)
	if err != nil {
		return assessment.SubmitResponse{}, err
	}

	resp := assessment.SubmitResponse{Form: req.Kind}
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		return f.submit(func(data any) error {
			if err := s.persist(txCtx, ownerID, data, &resp); err != nil {
				return err
			}
			return s.drafts.Clear(txCtx, ownerID, req.Kind.DraftKey())
		})
	})
	if err != nil {
		return assessment.SubmitResponse{}, err
	}

	switch {
	case resp.Record != nil:
		slog.Info("Submitted assessment form",
			"form", req.Kind,
			"owner_id", ownerID,
			"compliance_type_id", resp.Record.ComplianceTypeID,
			"entity_id", resp.Record.EntityID,
			"period", resp.Record.PeriodIdentifier,
		)
	case resp.Application != nil:
		slog.Info("Received job application",
			"owner_id", ownerID,
			"application_id", resp.Application.ID,
			"position", resp.Application.Position,
		)
	}
	return resp, nil
}

func (s *assessmentServiceImpl) persist(ctx context.Context, ownerID string, data any, resp *assessment.SubmitResponse) error {
	switch d := data.(type) {
	case compliant:
		subject := d.Target()
		notes := d.Notes()
		completedBy := ownerID
		date := subject.Date
		saved, err := s.complianceService.UpsertRecord(ctx, compliance.UpsertRecordRequest{
			TypeID:           subject.ComplianceTypeID,
			EntityID:         subject.EmployeeID,
			PeriodIdentifier: subject.PeriodIdentifier,
			CompletionDate:   &date,
			Status:           string(compliance.StatusCompleted),
			Notes:            &notes,
			CompletedBy:      &completedBy,
		})
		if err != nil {
			return err
		}
		resp.Record = &saved
	case assessment.JobApplication:
		saved, err := s.applicationRepo.Create(ctx, assessment.NewApplication(ownerID, d))
		if err != nil {
			return fmt.Errorf("failed to save job application: %w", err)
		}
		app := assessment.NewApplicationResponse(saved)
		resp.Application = &app
	default:
		return assessment.ErrUnknownForm
	}
	return nil
}

func draftResponse(kind assessment.FormKind, f form, data json.RawMessage) assessment.DraftResponse {
	return assessment.DraftResponse{
		FormKey:     kind.DraftKey(),
		CurrentStep: f.current(),
		Steps:       f.steps(),
		CanSubmit:   f.canSubmit(),
		Missing:     f.missing(),
		Data:        data,
	}
}
