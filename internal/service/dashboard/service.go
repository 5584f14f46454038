package dashboard

import (
	"context"
	"time"

	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/domain/dashboard"
	"github.com/yuadm/first-step-greet/internal/pkg/clock"
	complianceservice "github.com/yuadm/first-step-greet/internal/service/compliance"
	"golang.org/x/sync/errgroup"
)

// maxParallelTypes bounds the per-type resolutions run at once.
const maxParallelTypes = 4

type DashboardServiceImpl struct {
	complianceService compliance.Service
	clock             clock.Clock
}

func NewDashboardService(complianceService compliance.Service, clk clock.Clock) dashboard.DashboardService {
	return &DashboardServiceImpl{
		complianceService: complianceService,
		clock:             clk,
	}
}

// GetComplianceOverview resolves the current period of every active type in
// parallel, at most maxParallelTypes at a time.
func (s *DashboardServiceImpl) GetComplianceOverview(ctx context.Context, branchID *string) (*dashboard.ComplianceOverviewResponse, error) {
	types, err := s.complianceService.ListTypes(ctx, true)
	if err != nil {
		return nil, err
	}

	summaries := make([]dashboard.TypeSummaryResponse, len(types))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTypes)

	for i, t := range types {
		g.Go(func() error {
			summary, err := s.typeSummary(gCtx, t.ID, branchID)
			if err != nil {
				return err
			}
			summaries[i] = *summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var totals compliance.Summary
	for _, summary := range summaries {
		totals = complianceservice.AddSummary(totals, summary.Summary)
	}

	return &dashboard.ComplianceOverviewResponse{
		Types:       summaries,
		Totals:      totals,
		GeneratedAt: s.clock.Now().Format(time.RFC3339),
	}, nil
}

func (s *DashboardServiceImpl) GetTypeSummary(ctx context.Context, typeID string, branchID *string) (*dashboard.TypeSummaryResponse, error) {
	return s.typeSummary(ctx, typeID, branchID)
}

func (s *DashboardServiceImpl) typeSummary(ctx context.Context, typeID string, branchID *string) (*dashboard.TypeSummaryResponse, error) {
	status, err := s.complianceService.GetPeriodStatus(ctx, compliance.PeriodStatusRequest{
		TypeID:   typeID,
		BranchID: branchID,
	})
	if err != nil {
		return nil, err
	}

	return &dashboard.TypeSummaryResponse{
		ComplianceTypeID: status.Type.ID,
		Name:             status.Type.Name,
		Frequency:        status.Type.Frequency,
		TargetTable:      status.Type.TargetTable,
		PeriodIdentifier: status.PeriodIdentifier,
		Window:           status.Window,
		Summary:          status.Summary,
	}, nil
}
