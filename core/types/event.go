package types

// Event represents a typed event emitted during state transitions. The host
// consumes events to drive indexers and the external governance surface.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
