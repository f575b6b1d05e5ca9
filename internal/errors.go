package internal

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownNodeKind = errors.New("unknown node kind")
	ErrUnknownSlot     = errors.New("unknown input slot")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrUnresolvedPath  = errors.New("unresolved path")
	ErrMissingInput    = errors.New("missing input")
)

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
