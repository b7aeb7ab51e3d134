package service

import "errors"

// Validation and lookup sentinels shared across services. External-service
// failures surface as *ai.StatusError; storage and repository failures are
// wrapped with %w and reach the caller intact.
var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("not found")
	ErrReaderNil      = errors.New("reader is nil")
	ErrInvalidRole    = errors.New("role must be user or assistant")
	ErrEmptyContent   = errors.New("content is required")
	ErrReportConflict = errors.New("report key already exists")
)
