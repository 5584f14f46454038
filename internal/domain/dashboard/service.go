package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetComplianceOverview returns current-period summaries for every active
	// compliance type, restricted to branchID when set
	GetComplianceOverview(ctx context.Context, branchID *string) (*ComplianceOverviewResponse, error)

	// GetTypeSummary returns the current-period summary of one compliance type
	GetTypeSummary(ctx context.Context, typeID string, branchID *string) (*TypeSummaryResponse, error)
}
