package compliance

import "context"

// TypeRepository - interface for compliance_types table
type TypeRepository interface {
	Create(ctx context.Context, t Type) (Type, error)
	GetByID(ctx context.Context, id string) (Type, error)
	List(ctx context.Context, activeOnly bool) ([]Type, error)
	Update(ctx context.Context, t Type) error
}

// RecordFilter narrows record queries. Zero values mean no filter.
type RecordFilter struct {
	PeriodIdentifier string
	PeriodPrefix     string
	EntityIDs        []string
}

// RecordRepository - interface for the *_compliance_period_records tables.
// The table is chosen from the compliance type's target.
type RecordRepository interface {
	List(ctx context.Context, target TargetTable, typeID string, filter RecordFilter) ([]Record, error)
	GetByID(ctx context.Context, target TargetTable, id string) (Record, error)
	// Upsert inserts or replaces the record keyed by
	// (compliance_type_id, entity_id, period_identifier).
	Upsert(ctx context.Context, target TargetTable, r Record) (Record, error)
	UpdateEvidence(ctx context.Context, target TargetTable, id string, path string) error
	Delete(ctx context.Context, target TargetTable, id string) error
}

// SubjectFilter narrows subject queries.
type SubjectFilter struct {
	BranchID   *string
	ActiveOnly bool
}

// SubjectSource lists the employees or clients a compliance type covers.
type SubjectSource interface {
	ListSubjects(ctx context.Context, target TargetTable, filter SubjectFilter) ([]Subject, error)
	SubjectExists(ctx context.Context, target TargetTable, id string) (bool, error)
}
