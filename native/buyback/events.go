package buyback

// Event types emitted by the host when buyback state changes.
const (
	EventExecuted   = "buyback.executed"
	EventSkipped    = "buyback.skipped"
	EventAllocation = "buyback.allocation.updated"
)
