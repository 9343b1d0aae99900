package stats

import "fmt"

// ValidationError reports malformed or inconsistent input: an unknown stage
// identifier, a variant with no population entry, or a funnel whose stage
// counts are not non-increasing.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidInputError reports out-of-domain numeric arguments, e.g. a zero
// sample size or a success count outside [0, n].
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func invalidInputErrorf(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}
