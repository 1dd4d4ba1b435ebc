package recdex

import "github.com/kailas-cloud/recdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRange    = domain.ErrInvalidRange
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrEmptyVocabulary = domain.ErrEmptyVocabulary
	ErrUnknownTitle    = domain.ErrUnknownTitle
	ErrItemNotFound    = domain.ErrItemNotFound
	ErrInvalidCorpus   = domain.ErrInvalidCorpus
)

// UnknownTitleError carries the title that matched no item.
// Use errors.As() to extract it.
type UnknownTitleError = domain.UnknownTitleError
