package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusNotFound signals an unknown corpus identifier.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrParentNotFound signals a label path whose ancestor is not in the cache.
	ErrParentNotFound = errors.New("parent citation not found")
	// ErrLabelNotFound signals a label that does not exist under its parent.
	ErrLabelNotFound = errors.New("citation label not found")
	// ErrRemoteFetch signals a failed call to the remote reference service.
	ErrRemoteFetch = errors.New("remote reference fetch failed")
	// ErrInvalidRange signals a malformed start/end pair.
	ErrInvalidRange = errors.New("invalid text range")
	// ErrInvalidURN signals a passage identifier that cannot be parsed.
	ErrInvalidURN = errors.New("invalid urn")
)

// LabelError reports which label failed to resolve at which depth.
type LabelError struct {
	Label string
	Depth int
	Err   error
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("depth %d label %q: %s", e.Depth, e.Label, e.Err.Error())
}

func (e *LabelError) Unwrap() error { return e.Err }
