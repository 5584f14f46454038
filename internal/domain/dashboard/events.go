package dashboard

// SSE topics, also used as the event names.
const (
	// TopicComplianceSummary carries organisation-wide type summaries.
	TopicComplianceSummary = "compliance.summary"
	// TopicComplianceChanged carries only the changed type ID, for
	// subscribers that must refetch with their own branch scope.
	TopicComplianceChanged = "compliance.changed"
	// TopicComplianceDigest carries the periodic overdue digest.
	TopicComplianceDigest = "compliance.digest"
)

// OverdueDigest lists the compliance types with overdue entities in their
// current period.
type OverdueDigest struct {
	GeneratedAt  string                `json:"generated_at"`
	TotalOverdue int                   `json:"total_overdue"`
	Types        []TypeSummaryResponse `json:"types"`
}
