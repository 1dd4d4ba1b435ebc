package vectorizer

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/recdex/internal/domain"
)

// DefaultMaxFeatures is the vocabulary cap applied by DefaultConfig.
const DefaultMaxFeatures = 5000

// NGramRange is the inclusive range of n-gram lengths extracted as terms.
type NGramRange struct {
	Min int
	Max int
}

// Config holds every vectorizer setting. It is validated once by New.
type Config struct {
	// MinDF and MaxDF bound the document frequency (a proportion in [0,1]) a term
	// must fall within to enter the vocabulary.
	MinDF float64
	MaxDF float64
	// MaxFeatures caps the vocabulary size; 0 means unlimited.
	MaxFeatures int
	NGramRange  NGramRange
	// StopWords are dropped before n-grams are formed. Nil disables removal.
	StopWords []string
	// TokenPattern, when set, extracts tokens as regexp matches instead of
	// splitting on whitespace.
	TokenPattern string
	Lowercase    bool
}

// DefaultConfig returns the configuration used for the movie corpus:
// unigrams, English stopwords, no document-frequency filtering, 5000 features.
func DefaultConfig() Config {
	return Config{
		MinDF:       0,
		MaxDF:       1,
		MaxFeatures: DefaultMaxFeatures,
		NGramRange:  NGramRange{Min: 1, Max: 1},
		StopWords:   EnglishStopWords(),
		Lowercase:   true,
	}
}

// Validate checks ranges and the token pattern.
func (c *Config) Validate() error {
	if c.MinDF < 0 || c.MinDF > 1 {
		return fmt.Errorf("%w: min_df must be between 0 and 1, got %g", domain.ErrInvalidRange, c.MinDF)
	}
	if c.MaxDF < 0 || c.MaxDF > 1 {
		return fmt.Errorf("%w: max_df must be between 0 and 1, got %g", domain.ErrInvalidRange, c.MaxDF)
	}
	if c.MinDF > c.MaxDF {
		return fmt.Errorf("%w: min_df (%g) > max_df (%g)", domain.ErrInvalidRange, c.MinDF, c.MaxDF)
	}
	if c.NGramRange.Min < 1 {
		return fmt.Errorf("%w: ngram min must be >= 1, got %d", domain.ErrInvalidRange, c.NGramRange.Min)
	}
	if c.NGramRange.Min > c.NGramRange.Max {
		return fmt.Errorf("%w: ngram min (%d) > ngram max (%d)",
			domain.ErrInvalidRange, c.NGramRange.Min, c.NGramRange.Max)
	}
	if c.MaxFeatures < 0 {
		return fmt.Errorf("%w: max_features must be >= 0, got %d", domain.ErrInvalidConfig, c.MaxFeatures)
	}
	if c.TokenPattern != "" {
		if _, err := regexp.Compile(c.TokenPattern); err != nil {
			return fmt.Errorf("%w: token_pattern: %w", domain.ErrInvalidConfig, err)
		}
	}
	return nil
}
