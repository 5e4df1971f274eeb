package semantic

import (
	"strings"

	"github.com/surgebase/porter2"
)

// Stemmer normalizes words to a common root, so "authenticate" and
// "authentication" both reduce to "authent".
type Stemmer struct {
	enabled    bool
	algorithm  string
	minLength  int
	exclusions map[string]bool
}

// NewStemmer creates a stemmer. A nil exclusions map means no words are
// exempt from stemming.
func NewStemmer(enabled bool, algorithm string, minLength int, exclusions map[string]bool) *Stemmer {
	if algorithm == "" {
		algorithm = "porter2"
	}
	if minLength < 0 {
		minLength = 3
	}
	if exclusions == nil {
		exclusions = make(map[string]bool)
	}

	return &Stemmer{
		enabled:    enabled,
		algorithm:  algorithm,
		minLength:  minLength,
		exclusions: exclusions,
	}
}

// Stem returns the stem of word, or word unchanged when stemming is
// disabled, the word is excluded, or it's shorter than the minimum length.
func (s *Stemmer) Stem(word string) string {
	if !s.enabled {
		return word
	}
	if s.exclusions[strings.ToLower(word)] {
		return word
	}
	if len(word) < s.minLength {
		return word
	}

	switch s.algorithm {
	case "none":
		return word
	default:
		return porter2.Stem(word)
	}
}
