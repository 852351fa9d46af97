package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedColumnType = errors.New("unsupported column type")
	ErrUnsupportedOperation  = errors.New("unsupported operation")
	ErrUnsupportedDriver     = errors.New("unsupported driver")
)

// UnsupportedColumnTypeError reports a column type a dialect has no mapping for.
type UnsupportedColumnTypeError struct {
	Dialect string
	Type    string
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("%s: column type %q is not supported", e.Dialect, e.Type)
}

func (e *UnsupportedColumnTypeError) Is(target error) bool {
	return target == ErrUnsupportedColumnType
}

// UnsupportedOperationError reports a feature a dialect cannot express.
type UnsupportedOperationError struct {
	Dialect string
	Feature string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// UnsupportedDriverError reports an unknown driver name.
type UnsupportedDriverError struct {
	Driver    string
	Available []string
}

func (e *UnsupportedDriverError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported driver: %s", e.Driver)
	}
	return fmt.Sprintf("unsupported driver: %s (available: %s)", e.Driver, strings.Join(e.Available, ", "))
}

func (e *UnsupportedDriverError) Is(target error) bool {
	return target == ErrUnsupportedDriver
}
