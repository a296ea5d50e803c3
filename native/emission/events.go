package emission

// Event types emitted by the host when emission state changes.
const (
	EventRateAdjusted = "emission.rate.adjusted"
)
