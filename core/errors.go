package core

import "errors"

var (
	// ErrPriceUnavailable is returned when the oracle cannot attest a fresh
	// price. Price-dependent operations fail closed rather than compute on
	// stale data.
	ErrPriceUnavailable = errors.New("core: price unavailable")
	// ErrLedgerCallFailed wraps a token ledger failure after the core's own
	// checks passed. The core's state is rolled back before it is returned.
	ErrLedgerCallFailed = errors.New("core: ledger call failed")
	// ErrNilCollaborator is returned by the constructor when a required
	// capability is missing.
	ErrNilCollaborator = errors.New("core: nil collaborator")
)
