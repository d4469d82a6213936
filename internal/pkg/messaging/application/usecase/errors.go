package usecase

import "fmt"

// ErrPersistence indicates an infrastructure/repository failure inside a use
// case. It maps to a 5xx response and is never retried by the core; sends are
// not idempotent, so retrying is a caller decision.
var ErrPersistence = fmt.Errorf("messaging use case persistence error")
