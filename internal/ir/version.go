package ir

// Version constants for the IR wire format.
const (
	// SchemaVersion is the IR schema version. Minor bumps are additive only.
	SchemaVersion = "1.0.0"

	// FloatPrecision is the number of fractional digits kept for every
	// floating-point value on the wire. It is part of the wire contract.
	FloatPrecision = 6

	// TimestampLayout is the fixed UTC form used for created_at.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)
