package patchstream

import (
	"errors"
	"fmt"
)

var (
	ErrMissingData  = errors.New("revision 1 has no data")
	ErrMissingPatch = errors.New("revision has no patch")
)

// RevisionMismatchError reports an envelope whose revision does not follow
// the last applied one.
type RevisionMismatchError struct {
	Expected int
	Got      int
}

func (e *RevisionMismatchError) Error() string {
	return fmt.Sprintf("revision mismatch: expected %d, got %d", e.Expected, e.Got)
}
