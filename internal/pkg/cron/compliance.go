package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/yuadm/first-step-greet/internal/domain/dashboard"
	"github.com/yuadm/first-step-greet/internal/pkg/sse"
)

// ComplianceJobs reports on compliance status. The jobs only read; statuses
// are derived per request and nothing is written back.
type ComplianceJobs struct {
	dashboardService dashboard.DashboardService
	hub              *sse.Hub
	digestInterval   time.Duration
}

func NewComplianceJobs(dashboardService dashboard.DashboardService, hub *sse.Hub, digestInterval time.Duration) *ComplianceJobs {
	if digestInterval <= 0 {
		digestInterval = 24 * time.Hour
	}
	return &ComplianceJobs{
		dashboardService: dashboardService,
		hub:              hub,
		digestInterval:   digestInterval,
	}
}

func (j *ComplianceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("compliance_overdue_digest", j.digestInterval, j.OverdueDigest)
}

// OverdueDigest logs and publishes the overdue counts of every active type.
func (j *ComplianceJobs) OverdueDigest(ctx context.Context) error {
	slog.Info("Cron: Starting compliance overdue digest job")

	overview, err := j.dashboardService.GetComplianceOverview(ctx, nil)
	if err != nil {
		return err
	}

	digest := dashboard.OverdueDigest{GeneratedAt: overview.GeneratedAt}
	for _, t := range overview.Types {
		if t.Summary.Overdue == 0 {
			continue
		}
		digest.TotalOverdue += t.Summary.Overdue
		digest.Types = append(digest.Types, t)
		slog.Info("Compliance overdue",
			"compliance_type_id", t.ComplianceTypeID,
			"name", t.Name,
			"period", t.PeriodIdentifier,
			"overdue", t.Summary.Overdue,
			"total", t.Summary.Total,
		)
	}

	j.hub.Publish(dashboard.TopicComplianceDigest, sse.Event{
		Event: dashboard.TopicComplianceDigest,
		Data:  digest,
	})

	slog.Info("Cron: Compliance overdue digest completed", "types_with_overdue", len(digest.Types), "total_overdue", digest.TotalOverdue)
	return nil
}
