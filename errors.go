package ctsrange

import "github.com/kailas-cloud/ctsrange/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCorpusNotFound = domain.ErrCorpusNotFound
	ErrParentNotFound = domain.ErrParentNotFound
	ErrLabelNotFound  = domain.ErrLabelNotFound
	ErrRemoteFetch    = domain.ErrRemoteFetch
	ErrInvalidRange   = domain.ErrInvalidRange
	ErrInvalidURN     = domain.ErrInvalidURN
)

// LabelError reports which label failed to resolve at which depth (0-based).
type LabelError = domain.LabelError
