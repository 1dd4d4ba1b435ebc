package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange signals an inverted or out-of-bounds range in the vectorizer config.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidConfig signals any other invalid vectorizer setting.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrEmptyVocabulary signals that no term survived filtering.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrUnknownTitle signals a title that is not present in the corpus.
	ErrUnknownTitle = errors.New("unknown title")
	// ErrItemNotFound signals an item id that is not present in the corpus.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidCorpus signals malformed corpus input.
	ErrInvalidCorpus = errors.New("invalid corpus")
)

// UnknownTitleError wraps ErrUnknownTitle with the title that was queried.
type UnknownTitleError struct {
	Title string
}

func (e *UnknownTitleError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownTitle.Error(), e.Title)
}

func (e *UnknownTitleError) Unwrap() error { return ErrUnknownTitle }

// NewUnknownTitle creates an unknown title error.
func NewUnknownTitle(title string) error {
	return &UnknownTitleError{Title: title}
}
