// Package intent implements the query-intent analyser: it turns a
// free-form query string into a category tag, ranked keywords, a
// confidence score, an optional sub-category, and extracted entities used
// later for hallucination detection (spec §4.2).
package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/mantic/internal/semantic"
	"github.com/standardbeagle/mantic/internal/types"
)

var (
	kebabRe    = regexp.MustCompile(`[a-z]+-[a-z0-9-]+`)
	pascalRe   = regexp.MustCompile(`[A-Z][a-zA-Z]+`)
	camelRe    = regexp.MustCompile(`\b[a-z]+[A-Z][a-zA-Z]*\b`)
	filenameRe = regexp.MustCompile(`\b[\w-]+\.[a-zA-Z]{1,5}\b`)
	errNameRe  = regexp.MustCompile(`\b[A-Z][a-zA-Z]*Error\b`)
	errCodeRe  = regexp.MustCompile(`\bE[A-Z]{2,}\b`)
	httpCodeRe = regexp.MustCompile(`\b[1-5][0-9]{2}\b`)
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true, "were": true,
	"in": true, "on": true, "at": true, "to": true, "of": true, "for": true, "with": true,
	"by": true, "from": true, "as": true, "and": true, "or": true, "but": true,
	"i": true, "me": true, "my": true, "we": true, "our": true, "you": true, "your": true,
	"it": true, "its": true, "this": true, "that": true, "these": true, "those": true,
	"what": true, "where": true, "when": true, "why": true, "how": true, "who": true, "which": true,
	"is-the": true, "can": true, "does": true, "do": true, "did": true, "should": true,
	"fix": true, "add": true, "remove": true, "delete": true, "update": true, "change": true,
	"find": true, "show": true, "get": true, "set": true, "make": true, "create": true,
}

// category patterns, tested against individual extracted tokens.
var categoryPatterns = map[types.IntentCategory]*regexp.Regexp{
	types.IntentUI:          regexp.MustCompile(`(?i)^(ui|component|button|modal|dialog|form|input|view|render|jsx|tsx|page|layout|widget)s?$`),
	types.IntentAuth:        regexp.MustCompile(`(?i)^(auth|authentication|authorization|login|logout|session|token|jwt|oauth|permission|role|credential|password|signin|signup)s?$`),
	types.IntentStyling:     regexp.MustCompile(`(?i)^(style|css|scss|sass|theme|color|layout|responsive|design|tailwind)s?$`),
	types.IntentPerformance: regexp.MustCompile(`(?i)^(performance|perf|slow|optimi[sz]e|latency|benchmark|cache|memory|leak|speed)s?$`),
	types.IntentBackend:     regexp.MustCompile(`(?i)^(api|server|backend|endpoint|database|db|query|service|controller|repository|microservice)s?$`),
	types.IntentTesting:     regexp.MustCompile(`(?i)^(test|spec|mock|fixture|assertion|coverage|e2e|unit|integration)s?$`),
	types.IntentConfig:      regexp.MustCompile(`(?i)^(config|configuration|setting|env|environment|flag|option|yaml|toml)s?$`),
}

var subCategoryPatterns = map[types.IntentCategory][]struct {
	name string
	re   *regexp.Regexp
}{
	types.IntentAuth: {
		{"oauth", regexp.MustCompile(`(?i)^oauth$`)},
		{"session", regexp.MustCompile(`(?i)^session$`)},
		{"jwt", regexp.MustCompile(`(?i)^jwt$`)},
	},
	types.IntentBackend: {
		{"database", regexp.MustCompile(`(?i)^(db|database|query)$`)},
		{"api", regexp.MustCompile(`(?i)^(api|endpoint)$`)},
	},
	types.IntentTesting: {
		{"e2e", regexp.MustCompile(`(?i)^e2e$`)},
		{"unit", regexp.MustCompile(`(?i)^unit$`)},
	},
}

// componentSuffixes/classSuffixes partition PascalCase identifiers for
// entity extraction.
var componentSuffixes = []string{"Button", "Form", "Modal", "Dialog", "Card", "Input", "View", "Panel", "List", "Item", "Page", "Layout", "Widget"}
var classSuffixes = []string{"Service", "Controller", "Manager", "Repository", "Provider", "Handler", "Helper", "Factory", "Builder", "Client"}

// hostAPIAllowList filters common built-in/host API camelCase identifiers
// out of entity extraction (they are not user code symbols).
var hostAPIAllowList = map[string]bool{
	"getElementById": true, "addEventListener": true, "removeEventListener": true,
	"setTimeout": true, "setInterval": true, "clearTimeout": true, "clearInterval": true,
	"querySelector": true, "querySelectorAll": true, "parseInt": true, "parseFloat": true,
	"toString": true, "toLowerCase": true, "toUpperCase": true, "isNaN": true,
}

var stemmer = semantic.NewStemmer(true, "porter2", 3, nil)

// Analyze transforms a free-form query into an IntentAnalysis. Empty
// queries yield category=general, confidence=0, and no keywords.
func Analyze(query string) types.IntentAnalysis {
	keywords, preserved := extractKeywords(query)

	category, subCategory, confidence := classify(keywords, preserved)

	return types.IntentAnalysis{
		Category:    category,
		SubCategory: subCategory,
		Keywords:    keywords,
		Confidence:  confidence,
		Entities:    extractEntities(query),
	}
}

// extractKeywords implements spec §4.2's keyword-extraction pipeline:
// preserve kebab-case and PascalCase tokens first, then lowercase,
// tokenize, stem, drop stop words, and dedupe preserving first-seen order.
// It returns the final keyword list plus the set of tokens that were
// preserved verbatim (not lowercased/stemmed) for category matching.
func extractKeywords(query string) (keywords []string, preserved map[string]bool) {
	if strings.TrimSpace(query) == "" {
		return nil, map[string]bool{}
	}

	preserved = map[string]bool{}
	seen := map[string]bool{}
	var ordered []string

	consumed := make([]bool, len(query))
	markConsumed := func(start, end int) {
		for i := start; i < end && i < len(consumed); i++ {
			consumed[i] = true
		}
	}

	for _, loc := range kebabRe.FindAllStringIndex(query, -1) {
		tok := query[loc[0]:loc[1]]
		markConsumed(loc[0], loc[1])
		addKeyword(tok, &ordered, seen)
		preserved[tok] = true
	}
	for _, loc := range pascalRe.FindAllStringIndex(query, -1) {
		overlap := false
		for i := loc[0]; i < loc[1]; i++ {
			if consumed[i] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		tok := query[loc[0]:loc[1]]
		markConsumed(loc[0], loc[1])
		addKeyword(tok, &ordered, seen)
		preserved[tok] = true
	}

	var rest strings.Builder
	for i, r := range query {
		if consumed[i] {
			rest.WriteByte(' ')
		} else {
			rest.WriteRune(r)
		}
	}

	for _, raw := range strings.FieldsFunc(rest.String(), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		tok := strings.ToLower(raw)
		tok = stripSuffix(tok)
		if tok == "" || stopWords[tok] || len(tok) < 2 {
			continue
		}
		addKeyword(tok, &ordered, seen)
	}

	return ordered, preserved
}

func addKeyword(tok string, ordered *[]string, seen map[string]bool) {
	key := strings.ToLower(tok)
	if seen[key] {
		return
	}
	seen[key] = true
	*ordered = append(*ordered, tok)
}

// stripSuffix applies trivial suffix stripping ("ing|ed|s|es" at word end).
func stripSuffix(tok string) string {
	for _, suf := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(tok, suf) && len(tok) > len(suf)+2 {
			return strings.TrimSuffix(tok, suf)
		}
	}
	return tok
}

// classify scores every category by counting query tokens that match its
// regex, applies the tie-break and confidence rules from spec §4.2.
func classify(keywords []string, preserved map[string]bool) (types.IntentCategory, string, float64) {
	type hit struct {
		category types.IntentCategory
		count    int
		maxLen   int
	}

	candidates := make([]string, 0, len(keywords)+len(preserved))
	candidates = append(candidates, keywords...)
	for p := range preserved {
		candidates = append(candidates, p)
	}

	var hits []hit
	for cat, re := range categoryPatterns {
		count := 0
		maxLen := 0
		for _, kw := range candidates {
			if re.MatchString(kw) {
				count++
				if len(kw) > maxLen {
					maxLen = len(kw)
				}
			}
		}
		if count > 0 {
			hits = append(hits, hit{cat, count, maxLen})
		}
	}

	if len(hits) == 0 {
		return types.IntentGeneral, "", 0
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		if hits[i].maxLen != hits[j].maxLen {
			return hits[i].maxLen > hits[j].maxLen
		}
		return hits[i].category < hits[j].category
	})

	winner := hits[0]
	confidence := confidenceFor(winner.count)

	otherMatches := len(hits) - 1
	switch {
	case otherMatches == 1:
		confidence *= 0.85
	case otherMatches >= 2:
		confidence *= 0.70
	}
	confidence = clamp01(confidence)

	subCategory := matchSubCategory(winner.category, candidates)

	return winner.category, subCategory, confidence
}

func confidenceFor(count int) float64 {
	switch {
	case count >= 3:
		return 0.95
	case count == 2:
		return 0.85
	case count == 1:
		return 0.75
	default:
		return 0
	}
}

func matchSubCategory(cat types.IntentCategory, candidates []string) string {
	for _, sub := range subCategoryPatterns[cat] {
		for _, kw := range candidates {
			if sub.re.MatchString(kw) {
				return sub.name
			}
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// extractEntities best-effort-extracts filenames, PascalCase identifiers
// (partitioned into components vs classes), camelCase identifiers (minus
// the host-API allow-list), and error tokens, each deduplicated.
func extractEntities(query string) types.Entities {
	var e types.Entities

	e.Files = dedupe(filenameRe.FindAllString(query, -1))

	for _, tok := range dedupe(pascalRe.FindAllString(query, -1)) {
		if hasSuffixAny(tok, classSuffixes) {
			e.Classes = append(e.Classes, tok)
		} else {
			e.Components = append(e.Components, tok)
		}
	}

	for _, tok := range dedupe(camelRe.FindAllString(query, -1)) {
		if !hostAPIAllowList[tok] {
			e.Functions = append(e.Functions, tok)
		}
	}

	var errs []string
	errs = append(errs, errNameRe.FindAllString(query, -1)...)
	errs = append(errs, errCodeRe.FindAllString(query, -1)...)
	errs = append(errs, httpCodeRe.FindAllString(query, -1)...)
	e.Errors = dedupe(errs)

	return e
}

func hasSuffixAny(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// Stem exposes the shared porter2 stemmer. Analyze does not use it: keyword
// extraction applies only the trivial suffix stripping of stripSuffix.
func Stem(word string) string {
	return stemmer.Stem(word)
}
