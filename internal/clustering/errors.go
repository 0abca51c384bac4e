package clustering

import "errors"

// Error kinds the service surfaces to callers. Not-found conditions reuse
// store.ErrNotFound; authorization failures are rejected by the web layer
// before any service method runs. Anything not matching one of these
// sentinels is a storage failure: the unit of work has been rolled back
// and the caller may retry.
var (
	// ErrValidation marks malformed input, such as an un-decodable image
	// or a missing tenant id.
	ErrValidation = errors.New("invalid input")

	// ErrProvider marks a face analysis provider failure. The ingestion
	// it aborted persisted nothing.
	ErrProvider = errors.New("face analysis provider failure")
)
