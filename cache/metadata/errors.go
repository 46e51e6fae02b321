package metadata

import (
	"errors"
	"fmt"
)

// ErrOpen is the sentinel every store-open failure matches.
var ErrOpen = errors.New("metadata: cannot open store")

// OpenError reports why a store could not be opened or its superblock parsed.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cannot open metadata: %v", e.Err)
	}
	return fmt.Sprintf("cannot open metadata %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is makes every OpenError match ErrOpen.
func (e *OpenError) Is(target error) bool { return target == ErrOpen }
