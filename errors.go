package props

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a property that is absent and has no default.
	ErrNotFound = errors.New("props: property not found")
	// ErrMalformedValue is matched by every *MalformedValueError.
	ErrMalformedValue = errors.New("props: malformed property value")
	// ErrResourceLoad wraps failures to open or parse a property resource.
	ErrResourceLoad = errors.New("props: property resource could not be loaded")
	// ErrNoEvaluator is returned when no expression engine can be built.
	ErrNoEvaluator = errors.New("props: evaluator not configured")
	// ErrEmptyExpression rejects blank expressions.
	ErrEmptyExpression = errors.New("props: expression must not be empty")
	// ErrUnknownEngine is returned by NewEngine for unsupported engine names.
	ErrUnknownEngine = errors.New("props: unknown expression engine")
)

// MalformedValueError reports text that does not parse as the requested type.
type MalformedValueError struct {
	Key   string
	Value string
	Kind  string
	Err   error
}

func (e *MalformedValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("props: property %q: value %q is not a valid %s", e.Key, e.Value, e.Kind)
}

func (e *MalformedValueError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrMalformedValue.
func (e *MalformedValueError) Is(target error) bool {
	return target == ErrMalformedValue
}

func notFound(key string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, key)
}

// EvaluationError reports a failed expression together with the engine and
// scope it ran in.
type EvaluationError struct {
	Engine string
	Expr   string
	Scope  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	expr := "<empty>"
	if e.Expr != "" {
		expr = fmt.Sprintf("%q", e.Expr)
	}
	return fmt.Sprintf("props: %s expression %s (scope %s): %v", e.Engine, expr, e.Scope, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// wrapEvaluationError attaches evaluation metadata to err. An existing
// *EvaluationError in the chain is completed in place, never overwritten.
func wrapEvaluationError(engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Scope == "" {
			evalErr.Scope = scope
		}
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expr, Scope: scope, Err: err}
}
