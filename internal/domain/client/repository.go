package client

import "context"

// Filter narrows client listings. A nil BranchID lists every branch.
type Filter struct {
	BranchID   *string
	ActiveOnly bool
}

type ClientRepository interface {
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context, filter Filter) ([]Client, error)
}
