package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrRateLimited      = errors.New("rate limited")
	ErrAllQueriesFailed = errors.New("all queries failed")
	ErrPersist          = errors.New("persist failed")
)
