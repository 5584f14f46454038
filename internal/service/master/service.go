package master

import (
	"context"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/master/branch"
)

type MasterService interface {
	// GetBranch returns one branch.
	GetBranch(ctx context.Context, id string) (branch.BranchResponse, error)
	// ListBranches returns every branch, or only scope when it is set.
	ListBranches(ctx context.Context, scope *string) ([]branch.BranchResponse, error)
}

type masterServiceImpl struct {
	branchRepo branch.BranchRepository
}

func NewMasterService(branchRepo branch.BranchRepository) MasterService {
	return &masterServiceImpl{
		branchRepo: branchRepo,
	}
}

// ==================== BRANCH OPERATIONS ====================

func (s *masterServiceImpl) GetBranch(ctx context.Context, id string) (branch.BranchResponse, error) {
	b, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return branch.BranchResponse{}, fmt.Errorf("failed to get branch: %w", err)
	}
	return branch.NewBranchResponse(b), nil
}

func (s *masterServiceImpl) ListBranches(ctx context.Context, scope *string) ([]branch.BranchResponse, error) {
	if scope != nil {
		b, err := s.GetBranch(ctx, *scope)
		if err != nil {
			return nil, err
		}
		return []branch.BranchResponse{b}, nil
	}

	branches, err := s.branchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	responses := make([]branch.BranchResponse, 0, len(branches))
	for _, b := range branches {
		responses = append(responses, branch.NewBranchResponse(b))
	}
	return responses, nil
}
