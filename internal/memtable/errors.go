package memtable

import "fmt"

// ListError reports a precondition violation: a caller bug such as
// inserting a duplicate key or constructing a list with a non-positive
// MaxHeight/Branching. Per spec (§4.12 / §7), the list has no defined
// recovery state after one of these — the caller must not continue using
// the list.
type ListError struct {
	Op  string
	Msg string
}

func (e *ListError) Error() string {
	return fmt.Sprintf("memtable: %s: %s", e.Op, e.Msg)
}

func newListError(op, format string, args ...any) *ListError {
	return &ListError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
