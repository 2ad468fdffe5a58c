package netstat

import "fmt"

// EnumerationError is returned when the connection table cannot be read at
// all. It is fatal for the tick: retrying will not fix missing privileges.
type EnumerationError struct {
	Kind string
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("list %s connections: %v", e.Kind, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}
