package leftright

import "fmt"

var (
	// ErrConcurrentWrite reports a second writer, or a write started from
	// inside another write (for example from an Edit callback).
	ErrConcurrentWrite = fmt.Errorf("concurrent write")
	// ErrPublishDuringWrite reports a Publish while a write is still open.
	ErrPublishDuringWrite = fmt.Errorf("publish during write")
	// ErrLockMisuse reports an unlock of a lock that is not held in that mode.
	ErrLockMisuse = fmt.Errorf("lock misuse")
)

// UsageError is the panic value raised when the single-writer contract
// is broken. It is never returned.
//
//	defer func() {
//		if e, ok := recover().(*leftright.UsageError); ok && errors.Is(e, leftright.ErrConcurrentWrite) {
//			...
//		}
//	}()
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return "leftright: " + e.Op + ": " + e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func violation(op string, err error) *UsageError {
	return &UsageError{Op: op, Err: err}
}
