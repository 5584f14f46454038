package dashboard

import (
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/pkg/period"
)

// ComplianceOverviewResponse is the response for the main compliance dashboard
type ComplianceOverviewResponse struct {
	Types       []TypeSummaryResponse `json:"types"`
	Totals      compliance.Summary    `json:"totals"`
	GeneratedAt string                `json:"generated_at"` // RFC3339
}

// TypeSummaryResponse is one dashboard tile: a compliance type in its current period
type TypeSummaryResponse struct {
	ComplianceTypeID string             `json:"compliance_type_id"`
	Name             string             `json:"name"`
	Frequency        string             `json:"frequency"`
	TargetTable      string             `json:"target_table"`
	PeriodIdentifier string             `json:"period_identifier"`
	Window           period.Window      `json:"window"`
	Summary          compliance.Summary `json:"summary"`
}
