package entity

// Outcome carries the result of a provider-backed stage. When Degraded is set,
// Value holds the locally built fallback and Reason says what went wrong.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func Fallback[T any](v T, err error) Outcome[T] {
	o := Outcome[T]{Value: v, Degraded: true}
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}
