package models

import (
	"math"
	"strconv"
	"strings"
)

// NotApplicable is the serialized form of a derived value that cannot be computed.
const NotApplicable = "N/A"

// valueState tags an OptionalFloat.
type valueState int

const (
	stateUnset valueState = iota
	statePresent
	stateNotApplicable
)

// OptionalFloat is a float64 that may be unset, present, or explicitly not applicable.
// The zero value is unset.
type OptionalFloat struct {
	value float64
	state valueState
}

// Float returns a present OptionalFloat holding v.
func Float(v float64) OptionalFloat {
	return OptionalFloat{value: v, state: statePresent}
}

// NA returns an OptionalFloat marked not applicable.
func NA() OptionalFloat {
	return OptionalFloat{state: stateNotApplicable}
}

// Get returns the value and whether it is present.
func (o OptionalFloat) Get() (float64, bool) {
	return o.value, o.state == statePresent
}

// IsSet reports whether a value is present.
func (o OptionalFloat) IsSet() bool {
	return o.state == statePresent
}

// IsNA reports whether the value was marked not applicable.
func (o OptionalFloat) IsNA() bool {
	return o.state == stateNotApplicable
}

// String renders the value as it appears in summary output:
// empty when unset, "N/A" when not applicable.
func (o OptionalFloat) String() string {
	switch o.state {
	case statePresent:
		return FormatFloat(o.value)
	case stateNotApplicable:
		return NotApplicable
	default:
		return ""
	}
}

// OptionalInt is an int64 that may be unset. The zero value is unset.
type OptionalInt struct {
	value int64
	set   bool
}

// Int returns a present OptionalInt holding v.
func Int(v int64) OptionalInt {
	return OptionalInt{value: v, set: true}
}

// Get returns the value and whether it is present.
func (o OptionalInt) Get() (int64, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o OptionalInt) IsSet() bool {
	return o.set
}

// String renders the value in base 10, or empty when unset.
func (o OptionalInt) String() string {
	if !o.set {
		return ""
	}
	return strconv.FormatInt(o.value, 10)
}

// FormatFloat renders v in shortest round-trip form, always with a fractional
// part: 2 -> "2.0", 1e-05 -> "1.0e-05", 1e+20 -> "1.0e+20".
// Scientific notation is used below 1e-4 and from 1e16 upward.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}
		return mantissa + "e" + exp
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
