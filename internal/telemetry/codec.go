package telemetry

import (
	"fmt"
	"math"
)

// encodingScale is the fixed-point scale for numeric readings: two decimal
// digits of precision survive the round trip exactly.
const encodingScale = 100

// Encode converts a decoded value to its persisted int64 form.
//
// Numeric kinds use round(value * 100) with halves rounded away from zero
// (math.Round semantics). Boolean kinds encode false as 0 and true as 1.
//
// Returns ErrInvalidValueKind when the value's shape does not match the
// kind's representation.
func Encode(kind SensorKind, v Value) (int64, error) {
	if v.IsBool != kind.Boolean() {
		return 0, fmt.Errorf("%w: kind %s, value %s", ErrInvalidValueKind, kind, v)
	}

	if v.IsBool {
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	}

	return int64(math.Round(v.Number * encodingScale)), nil
}

// Decode converts a persisted int64 back to a decoded value.
//
// Decoding is total: boolean kinds treat any nonzero as true, numeric kinds
// divide by 100. Division is exact whenever the encoded integer is exactly
// representable, so Encode/Decode round-trips for values with at most two
// decimal digits.
func Decode(kind SensorKind, encoded int64) Value {
	if kind.Boolean() {
		return BoolValue(encoded != 0)
	}
	return NumberValue(float64(encoded) / encodingScale)
}
