package types

// ValueWithFlag pairs a value with a flag telling whether it can be trusted.
// The zero value is invalid.
type ValueWithFlag[T any] struct {
	Valid bool `json:"valid"`
	Value T    `json:"value"`
}

// Valid wraps v as a trusted value.
func Valid[T any](v T) ValueWithFlag[T] { return ValueWithFlag[T]{Valid: true, Value: v} }

// Invalid returns the untrusted zero state.
func Invalid[T any]() ValueWithFlag[T] { return ValueWithFlag[T]{} }

// Get returns the value and its validity, comma-ok style.
func (v ValueWithFlag[T]) Get() (T, bool) { return v.Value, v.Valid }

// Temperature is a validity-tagged reading in °C.
type Temperature = ValueWithFlag[float32]
