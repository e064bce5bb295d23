package sentinel

import "errors"

// Infrastructure facts returned by stores, optionally wrapped. Services
// translate them into coded domain errors; handlers never see them directly.
//
// For rejected input or sale rules, use pkg/domain-errors instead.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
