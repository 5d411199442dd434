package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Upstream API clients and caches
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist upstream
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: upstream service temporarily unavailable
// - ErrCircuitOpen: calls short-circuited after repeated upstream failures
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrCircuitOpen  = errors.New("circuit open")
)
