package scrapetmpl

// Outcome is the result of an operation as seen by an outer layer: either
// Success with a Value, or a failure with a human-readable Reason.
type Outcome[T any] struct {
	Success bool   `json:"success"`
	Value   T      `json:"value,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Code    string `json:"code,omitempty"`
}

// NewOutcome builds an Outcome from the usual (value, error) pair.
// On error the value is dropped.
func NewOutcome[T any](v T, err error) Outcome[T] {
	if err != nil {
		return Outcome[T]{Reason: ErrorMessage(err), Code: ErrorCode(err)}
	}
	return Outcome[T]{Success: true, Value: v}
}
