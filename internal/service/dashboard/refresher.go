package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/domain/dashboard"
	"github.com/yuadm/first-step-greet/internal/pkg/debounce"
	"github.com/yuadm/first-step-greet/internal/pkg/sse"
)

const refreshTimeout = 30 * time.Second

// Refresher recomputes a compliance type's dashboard summary once record
// changes for that type have settled, and publishes it on the SSE hub.
type Refresher struct {
	dashboardService dashboard.DashboardService
	hub              *sse.Hub
	debouncer        *debounce.Debouncer
}

func NewRefresher(dashboardService dashboard.DashboardService, hub *sse.Hub, delay time.Duration) *Refresher {
	r := &Refresher{
		dashboardService: dashboardService,
		hub:              hub,
	}
	r.debouncer = debounce.New(delay, r.refresh)
	return r
}

// RecordsChanged schedules a refresh of typeID.
func (r *Refresher) RecordsChanged(typeID string) {
	r.debouncer.Trigger(typeID)
}

// Stop drops pending refreshes.
func (r *Refresher) Stop() {
	r.debouncer.Stop()
}

func (r *Refresher) refresh(typeID string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	r.hub.Publish(dashboard.TopicComplianceChanged, sse.Event{
		Event: dashboard.TopicComplianceChanged,
		Data:  map[string]string{"compliance_type_id": typeID},
	})

	summary, err := r.dashboardService.GetTypeSummary(ctx, typeID, nil)
	if err != nil {
		if errors.Is(err, compliance.ErrTypeNotFound) {
			slog.Debug("Skipping refresh of deleted compliance type", "compliance_type_id", typeID)
			return
		}
		slog.Error("Failed to refresh compliance summary", "compliance_type_id", typeID, "error", err)
		return
	}

	r.hub.Publish(dashboard.TopicComplianceSummary, sse.Event{
		Event: dashboard.TopicComplianceSummary,
		Data:  summary,
	})
	slog.Debug("Published compliance summary", "compliance_type_id", typeID, "subscribers", r.hub.SubscriberCount(dashboard.TopicComplianceSummary))
}

var _ compliance.Notifier = (*Refresher)(nil)
