// Package semantic provides word-normalization helpers: a stemmer, which
// the intent package exposes as intent.Stem, and fuzzy string similarity,
// which the context builder uses for entity-validation suggestions.
//
// # Core Components
//
// Stemmer reduces words to their root forms using the Porter2 algorithm,
// enabling matches between different word forms (e.g., "validate" and
// "validation").
//
// FuzzyMatcher implements fuzzy string matching using configurable
// algorithms (Jaro-Winkler, Levenshtein, or character-bigram cosine
// similarity), used to suggest near-matches for unresolved entities.
//
// # Usage Example
//
//	stemmer := semantic.NewStemmer(true, "porter2", 3, nil)
//	fuzzer := semantic.NewFuzzyMatcher(true, 0.7, "levenshtein")
//
//	stemmer.Stem("authentication") // "authent"
//	fuzzer.Similarity("Button", "ButtonXyzzy") // ~0.5
package semantic
