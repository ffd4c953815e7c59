package ir

import "errors"

// ErrStaleValidation is returned when an instance is encoded after its node or
// edge collections changed size since validation.
var ErrStaleValidation = errors.New("validation report is stale: node/edge counts differ from live collections")

// ErrNotValidated is returned when an instance without a validation report is
// encoded.
var ErrNotValidated = errors.New("instance has no validation report")
