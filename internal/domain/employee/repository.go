package employee

import "context"

// Filter narrows employee listings. A nil BranchID lists every branch.
type Filter struct {
	BranchID   *string
	ActiveOnly bool
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter Filter) ([]Employee, error)
}
