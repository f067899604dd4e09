package z3

import "fmt"

// ErrorCode mirrors Z3_error_code.
type ErrorCode int

// Error is a failure reported by Z3 through its error code after an API call.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("z3: %s failed (code %d): %s", e.Op, e.Code, e.Message)
}
