package libdiff

import (
	"errors"
	"fmt"
)

// ErrMalformedDelta matches any *MalformedDeltaError with errors.Is.
var ErrMalformedDelta = errors.New("malformed delta")

// MalformedDeltaError reports a delta that could not be interpreted.
type MalformedDeltaError struct {
	Path   string
	Reason string
}

func (e *MalformedDeltaError) Error() string {
	return fmt.Sprintf("malformed delta at %s: %s", e.Path, e.Reason)
}

func (e *MalformedDeltaError) Is(target error) bool {
	return target == ErrMalformedDelta
}

func malformed(p *path, format string, args ...any) error {
	return &MalformedDeltaError{Path: p.String(), Reason: fmt.Sprintf(format, args...)}
}
