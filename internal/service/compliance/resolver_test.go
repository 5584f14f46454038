package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
)

func subjects(ids ...string) []compliance.Subject {
	out := make([]compliance.Subject, 0, len(ids))
	for _, id := range ids {
		out = append(out, compliance.Subject{ID: id, Name: "Name " + id, Kind: compliance.SubjectEmployee})
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestResolveStatuses_QuarterExample(t *testing.T) {
	completed := day(2025, time.March, 10)
	records := []compliance.Record{
		{ID: "r1", EntityID: "A", PeriodIdentifier: "2025-Q1", CompletionDate: &completed},
	}

	entries := ResolveStatuses(subjects("A", "B", "C"), records, "2025-Q1", "quarterly", day(2025, time.April, 15))

	require.Len(t, entries, 3)
	assert.Equal(t, compliance.StatusCompleted, entries[0].Status)
	require.NotNil(t, entries[0].Record)
	assert.Equal(t, "r1", entries[0].Record.ID)
	assert.Equal(t, compliance.StatusOverdue, entries[1].Status)
	assert.Nil(t, entries[1].Record)
	assert.Equal(t, compliance.StatusOverdue, entries[2].Status)
}

func TestResolveStatuses_DueInsideWindow(t *testing.T) {
	entries := ResolveStatuses(subjects("A"), nil, "2025-Q2", "quarterly", day(2025, time.April, 15))
	require.Len(t, entries, 1)
	assert.Equal(t, compliance.StatusDue, entries[0].Status)
}

func TestResolveStatuses_CompletionBeatsOverdue(t *testing.T) {
	completed := day(2025, time.May, 2)
	records := []compliance.Record{
		{EntityID: "A", PeriodIdentifier: "2025-04", CompletionDate: &completed, Status: "overdue", IsOverdue: true},
		{EntityID: "B", PeriodIdentifier: "2025-04", Status: "completed"},
	}

	entries := ResolveStatuses(subjects("A", "B"), records, "2025-04", "monthly", day(2025, time.April, 10))
	assert.Equal(t, compliance.StatusCompleted, entries[0].Status)
	assert.Equal(t, compliance.StatusCompleted, entries[1].Status)
}

func TestResolveStatuses_ExplicitOverdueBeforeWindowEnds(t *testing.T) {
	records := []compliance.Record{
		{EntityID: "A", PeriodIdentifier: "2025", Status: "overdue"},
		{EntityID: "B", PeriodIdentifier: "2025", IsOverdue: true},
		{EntityID: "C", PeriodIdentifier: "2025", Status: "in progress"},
	}

	entries := ResolveStatuses(subjects("A", "B", "C"), records, "2025", "Annual", day(2025, time.June, 1))
	assert.Equal(t, compliance.StatusOverdue, entries[0].Status)
	assert.Equal(t, compliance.StatusOverdue, entries[1].Status)
	assert.Equal(t, compliance.StatusDue, entries[2].Status)
	assert.NotNil(t, entries[2].Record)
}

func TestResolveStatuses_IgnoresOtherPeriodsAndEntities(t *testing.T) {
	completed := day(2025, time.January, 5)
	records := []compliance.Record{
		{EntityID: "A", PeriodIdentifier: "2024-Q4", CompletionDate: &completed},
		{EntityID: "Z", PeriodIdentifier: "2025-Q1", CompletionDate: &completed},
	}

	entries := ResolveStatuses(subjects("A"), records, "2025-Q1", "quarterly", day(2025, time.February, 1))
	require.Len(t, entries, 1)
	assert.Equal(t, compliance.StatusDue, entries[0].Status)
	assert.Nil(t, entries[0].Record)
}

func TestResolveStatuses_DuplicateRecordsPreferCompleted(t *testing.T) {
	completed := day(2025, time.January, 5)
	records := []compliance.Record{
		{ID: "late", EntityID: "A", PeriodIdentifier: "2025-H1", Status: "overdue"},
		{ID: "done", EntityID: "A", PeriodIdentifier: "2025-H1", CompletionDate: &completed},
		{ID: "note", EntityID: "A", PeriodIdentifier: "2025-H1", Status: "scheduled"},
	}

	entries := ResolveStatuses(subjects("A"), records, "2025-H1", "bi-annual", day(2025, time.August, 1))
	require.Len(t, entries, 1)
	assert.Equal(t, compliance.StatusCompleted, entries[0].Status)
	assert.Equal(t, "done", entries[0].Record.ID)
}

func TestResolveStatuses_MalformedPeriodIsNeverOverdue(t *testing.T) {
	entries := ResolveStatuses(subjects("A", "B"), nil, "2025-QQ", "quarterly", day(2030, time.January, 1))
	for _, e := range entries {
		assert.Equal(t, compliance.StatusDue, e.Status)
	}
}

func TestResolveStatuses_Total(t *testing.T) {
	ids := []string{"A", "B", "C", "D", "E", "F"}
	completed := day(2025, time.March, 1)
	records := []compliance.Record{
		{EntityID: "A", PeriodIdentifier: "2025-03", CompletionDate: &completed},
		{EntityID: "C", PeriodIdentifier: "2025-03", Status: "overdue"},
		{EntityID: "E", PeriodIdentifier: "2025-02", Status: "completed"},
		{EntityID: "ghost", PeriodIdentifier: "2025-03", Status: "completed"},
	}

	for _, now := range []time.Time{day(2025, time.March, 15), day(2025, time.April, 2)} {
		entries := ResolveStatuses(subjects(ids...), records, "2025-03", "monthly", now)
		require.Len(t, entries, len(ids))

		seen := map[string]int{}
		for i, e := range entries {
			assert.Equal(t, ids[i], e.Subject.ID)
			seen[e.Subject.ID]++
			assert.Contains(t, []compliance.Status{
				compliance.StatusCompleted, compliance.StatusOverdue, compliance.StatusDue, compliance.StatusPending,
			}, e.Status)
		}
		for _, id := range ids {
			assert.Equal(t, 1, seen[id])
		}

		summary := Summarize(entries)
		assert.Equal(t, 0, summary.Pending)
		assert.Equal(t, len(entries), summary.Completed+summary.Overdue+summary.Due)
		assert.Equal(t, len(entries), summary.Total)
	}
}

func TestSummarize(t *testing.T) {
	entries := []compliance.StatusEntry{
		{Status: compliance.StatusCompleted},
		{Status: compliance.StatusCompleted},
		{Status: compliance.StatusOverdue},
		{Status: compliance.StatusDue},
	}

	assert.Equal(t, compliance.Summary{Completed: 2, Overdue: 1, Due: 1, Total: 4}, Summarize(entries))
	assert.Equal(t, compliance.Summary{}, Summarize(nil))
}

func TestAddSummary(t *testing.T) {
	a := compliance.Summary{Completed: 1, Overdue: 2, Due: 3, Total: 6}
	b := compliance.Summary{Completed: 4, Due: 1, Total: 5}
	assert.Equal(t, compliance.Summary{Completed: 5, Overdue: 2, Due: 4, Total: 11}, AddSummary(a, b))
}
