package ports

// WorkflowMetrics records workflow outcomes. Implementations must be safe for
// concurrent use.
type WorkflowMetrics interface {
	TransitionApplied(machine, from, to string)
	TransitionDenied(kind string)
	AuditWriteDegraded()
	ConcurrencyRetry()
	NotificationFailed()

	// SetDelayBuckets publishes how many open orders sit in each delay bucket of a stage.
	SetDelayBuckets(stage string, counts map[string]int)
}
