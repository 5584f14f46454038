package compliance

import (
	"log/slog"
	"time"

	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/pkg/period"
)

// ResolveStatuses returns exactly one entry per subject, in subject order.
//
// Rules, first match wins:
//  1. a matching record with a completion date or status "completed" → completed
//  2. a matching record with status "overdue" or the overdue flag → overdue
//  3. otherwise → overdue if now is past the period's last day, else due
//
// A matching record has the subject's ID and the target period identifier.
func ResolveStatuses(subjects []compliance.Subject, records []compliance.Record, periodID string, frequency string, now time.Time) []compliance.StatusEntry {
	byEntity := make(map[string]*compliance.Record, len(records))
	for i := range records {
		r := &records[i]
		if r.PeriodIdentifier != periodID {
			continue
		}
		if existing, ok := byEntity[r.EntityID]; ok && recordRank(*existing) >= recordRank(*r) {
			continue
		}
		byEntity[r.EntityID] = r
	}

	periodOverdue := period.IsOverdue(periodID, frequency, now)

	entries := make([]compliance.StatusEntry, 0, len(subjects))
	for _, s := range subjects {
		entry := compliance.StatusEntry{Subject: s}
		if r, ok := byEntity[s.ID]; ok {
			rec := *r
			entry.Record = &rec
		}

		switch {
		case entry.Record != nil && entry.Record.IsCompleted():
			entry.Status = compliance.StatusCompleted
		case entry.Record != nil && entry.Record.IsMarkedOverdue():
			entry.Status = compliance.StatusOverdue
		case periodOverdue:
			entry.Status = compliance.StatusOverdue
		default:
			entry.Status = compliance.StatusDue
		}
		entries = append(entries, entry)
	}

	return entries
}

// recordRank orders duplicate records for the same entity and period so the
// most conclusive one wins.
func recordRank(r compliance.Record) int {
	switch {
	case r.IsCompleted():
		return 2
	case r.IsMarkedOverdue():
		return 1
	}
	return 0
}

// Summarize counts entries by status.
func Summarize(entries []compliance.StatusEntry) compliance.Summary {
	var s compliance.Summary
	for _, e := range entries {
		switch e.Status {
		case compliance.StatusCompleted:
			s.Completed++
		case compliance.StatusOverdue:
			s.Overdue++
		case compliance.StatusDue:
			s.Due++
		case compliance.StatusPending:
			s.Pending++
		}
		s.Total++
	}

	if s.Pending > 0 {
		slog.Warn("Compliance summary contains pending entries; the resolver should never produce them", "pending", s.Pending)
	}

	return s
}

// AddSummary returns the field-wise sum of a and b.
func AddSummary(a, b compliance.Summary) compliance.Summary {
	return compliance.Summary{
		Completed: a.Completed + b.Completed,
		Overdue:   a.Overdue + b.Overdue,
		Due:       a.Due + b.Due,
		Pending:   a.Pending + b.Pending,
		Total:     a.Total + b.Total,
	}
}
