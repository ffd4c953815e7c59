package units

import (
	"errors"
	"fmt"
)

// UnitErrorCode categorizes unit errors.
type UnitErrorCode string

const (
	// ErrCodeUnknownUnit indicates a unit name missing from the conversion table.
	ErrCodeUnknownUnit UnitErrorCode = "UNKNOWN_UNIT"

	// ErrCodeUnknownDimension indicates a dimension other than
	// length, angle, area, volume or mass.
	ErrCodeUnknownDimension UnitErrorCode = "UNKNOWN_DIMENSION"

	// ErrCodeMissingUnit indicates an empty unit declaration.
	ErrCodeMissingUnit UnitErrorCode = "MISSING_UNIT"
)

// UnitError is returned when a declared source unit cannot be converted.
// It is fatal to the instance being normalized.
type UnitError struct {
	Code      UnitErrorCode
	Dimension string
	Unit      string
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	switch e.Code {
	case ErrCodeUnknownDimension:
		return fmt.Sprintf("%s: unknown unit dimension %q", e.Code, e.Dimension)
	case ErrCodeMissingUnit:
		return fmt.Sprintf("%s: no unit declared for %s", e.Code, e.Dimension)
	default:
		return fmt.Sprintf("%s: unsupported %s unit %q", e.Code, e.Dimension, e.Unit)
	}
}

// IsUnitError reports whether err is, or wraps, a *UnitError.
func IsUnitError(err error) bool {
	var ue *UnitError
	return errors.As(err, &ue)
}
