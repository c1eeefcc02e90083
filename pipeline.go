package neurarrow

import js "github.com/neurarrow/neurarrow-go/jsonschema"

// Validator checks a single metadata value. Implementations must be pure and
// deterministic; failures should be returned as Issues so the checker can
// report the cause code.
type Validator interface {
	Validate(key, value string) error
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(key, value string) error

func (f ValidatorFunc) Validate(key, value string) error { return f(key, value) }

// Describer provides an optional hook for validators to narrow the JSON Schema
// of the metadata values they accept. If it is not implemented, the value is
// described as a plain string.
type Describer interface {
	Describe(s *js.Schema)
}

// ApplyValidate calls v when it is non-nil.
func ApplyValidate(v Validator, key, value string) error {
	if v == nil {
		return nil
	}
	return v.Validate(key, value)
}

// ApplyDescribe calls Describer if implemented.
func ApplyDescribe(v Validator, s *js.Schema) {
	if d, ok := v.(Describer); ok {
		d.Describe(s)
	}
}
