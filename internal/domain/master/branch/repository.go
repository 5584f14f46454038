package branch

import "context"

type Branch struct {
	ID       string
	Name     string
	Address  *string
	Timezone string
}

type BranchRepository interface {
	GetByID(ctx context.Context, id string) (Branch, error)
	List(ctx context.Context) ([]Branch, error)
}
