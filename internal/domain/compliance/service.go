package compliance

import (
	"context"
	"io"
)

type Service interface {
	// Type
	CreateType(ctx context.Context, req CreateTypeRequest) (TypeResponse, error)
	UpdateType(ctx context.Context, req UpdateTypeRequest) (TypeResponse, error)
	GetType(ctx context.Context, id string) (TypeResponse, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]TypeResponse, error)
	// Period
	GetPeriodStatus(ctx context.Context, req PeriodStatusRequest) (PeriodStatusResponse, error)
	ListPeriods(ctx context.Context, typeID string, year int) (ListPeriodsResponse, error)
	ParsePeriod(ctx context.Context, identifier, frequency string) (ParsePeriodResponse, error)
	ExportPeriodStatus(ctx context.Context, req PeriodStatusRequest, w io.Writer) (string, error)
	// Record
	UpsertRecord(ctx context.Context, req UpsertRecordRequest) (RecordResponse, error)
	DeleteRecord(ctx context.Context, typeID, recordID string) error
	AttachEvidence(ctx context.Context, typeID, recordID string, file io.Reader, filename string) (RecordResponse, error)
}

// Notifier is told when records of a compliance type change.
type Notifier interface {
	RecordsChanged(typeID string)
}
