package container

import "errors"

var (
	// ErrCircularDependency matches every *CircularDependencyError.
	ErrCircularDependency = errors.New("container: circular dependency")

	// ErrInvalidConstructor is returned when a registered value is not a
	// supported constructor function.
	ErrInvalidConstructor = errors.New("container: invalid constructor")

	// ErrArgumentType is returned when a resolved or injected value cannot be
	// passed to a constructor parameter.
	ErrArgumentType = errors.New("container: argument type mismatch")
)

// CircularDependencyError reports a dependency loop found while resolving.
// Path holds the looping segment; its first and last entries name the same
// implementation.
type CircularDependencyError struct {
	Path []TraceEntry
}

func newCircularDependencyError(trace *Trace) *CircularDependencyError {
	path := trace.Cycle()
	if path == nil {
		path = trace.Entries()
	}
	return &CircularDependencyError{Path: path}
}

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency detected: " + joinEntries(e.Path)
}

// Is makes errors.Is(err, ErrCircularDependency) work.
func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}
