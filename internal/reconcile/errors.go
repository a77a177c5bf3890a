package reconcile

import "fmt"

// RemoteWriteError is returned when a create, update or commit call against
// the source or the sink fails. Writes issued earlier in the run stay applied.
type RemoteWriteError struct {
	Target string
	Op     string
	Err    error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Target, e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// DateParseError is returned when a sink due date matches none of the accepted layouts.
type DateParseError struct {
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable due date %q", e.Value)
}

func sinkWriteError(op string, err error) error {
	return &RemoteWriteError{Target: "sink", Op: op, Err: err}
}

func sourceWriteError(op string, err error) error {
	return &RemoteWriteError{Target: "source", Op: op, Err: err}
}
