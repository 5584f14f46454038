package assessment

import "context"

type AssessmentService interface {
	GetDraft(ctx context.Context, ownerID string, kind FormKind) (DraftResponse, error)
	SaveDraft(ctx context.Context, ownerID string, req SaveDraftRequest) (DraftResponse, error)
	DiscardDraft(ctx context.Context, ownerID string, kind FormKind) error
	// Submit persists the completed form and clears the draft. Assessments
	// complete a compliance record; job applications are stored as received.
	Submit(ctx context.Context, ownerID string, req SubmitRequest) (SubmitResponse, error)
}
