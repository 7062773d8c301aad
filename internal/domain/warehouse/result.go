package warehouse

import "errors"

// ResultEnvelope is the uniform result of every fulfillment operation.
// A success carries the provider response and the derived outcome; a
// failure carries a message and, for postal code failures, the zcode.
type ResultEnvelope[T any] struct {
	Success bool          `json:"success"`
	Kind    OperationKind `json:"kind"`
	Data    T             `json:"data,omitempty"`
	Outcome StatusOutcome `json:"outcome,omitempty"`
	Message string        `json:"message,omitempty"`
	ZCode   int           `json:"zcode,omitempty"`
	Err     error         `json:"-"`
}

// Succeeded builds a success envelope
func Succeeded[T any](kind OperationKind, data T, outcome StatusOutcome) ResultEnvelope[T] {
	return ResultEnvelope[T]{
		Success: true,
		Kind:    kind,
		Data:    data,
		Outcome: outcome,
	}
}

// Failed builds a failure envelope from err. Validation failures keep
// their zcode and localized message.
func Failed[T any](kind OperationKind, err error) ResultEnvelope[T] {
	env := ResultEnvelope[T]{
		Kind:    kind,
		Outcome: OutcomeNotAccepted,
		Err:     err,
	}
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		env.ZCode = vf.ZCode
		env.Message = vf.Message
		return env
	}
	if err != nil {
		env.Message = err.Error()
	}
	return env
}
