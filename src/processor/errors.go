package processor

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("airline not found")
	ErrUnknownPeriod = errors.New("unknown period suffix")
	ErrUnknownFamily = errors.New("unknown metric family")
	ErrUnknownColumn = errors.New("unrecognised wide column")
	ErrDuplicateKey  = errors.New("duplicate long-form key")
)

// NotFoundError 查询的航司不存在，或排名步骤没有结果
type NotFoundError struct {
	Airline string
	Op      string
}

func (e *NotFoundError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %q", ErrNotFound, e.Airline)
	}
	return fmt.Sprintf("%s: %s: %q", e.Op, ErrNotFound, e.Airline)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type columnError struct {
	name string
	err  error
}

func (e *columnError) Error() string { return fmt.Sprintf("%v: %q", e.err, e.name) }
func (e *columnError) Unwrap() error { return e.err }
