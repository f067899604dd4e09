package transaction

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArgument is wrapped by every dispatcher argument error.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError names the missing or malformed dispatcher argument.
type InvalidArgumentError struct {
	Argument string
	Err      error
}

func (e *InvalidArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid argument %s: %v", e.Argument, e.Err)
	}
	return "argument not found: " + e.Argument
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func missingArgument(name string) error {
	return errors.WithStack(&InvalidArgumentError{Argument: name})
}

func malformedArgument(name string, err error) error {
	return errors.WithStack(&InvalidArgumentError{Argument: name, Err: err})
}
