package contextbuilder

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/mantic/internal/semantic"
	"github.com/standardbeagle/mantic/internal/types"
)

// hallucinationFraction above which a result is flagged "likely
// hallucination" — more than half of the extracted entities went
// unresolved against the repository.
const hallucinationFraction = 0.5

const entitySuggestionLimit = 3

var entityKinds = []string{"files", "functions", "classes", "components", "errors"}

func singularKind(bucket string) string {
	switch bucket {
	case "files":
		return "file_not_found"
	case "functions":
		return "function_not_found"
	case "classes":
		return "class_not_found"
	case "components":
		return "component_not_found"
	case "errors":
		return "error_not_found"
	default:
		return bucket + "_not_found"
	}
}

// validateEntities checks the intent analyser's extracted entities
// against enumerated paths and indexed symbols, suggesting close
// matches (Levenshtein similarity >= 0.7) for anything unresolved
// (spec §4.9).
func validateEntities(entities types.Entities, candidatePaths []string, idx *types.CacheIndex) ([]string, *Validation) {
	buckets := map[string][]string{
		"files":      entities.Files,
		"functions":  entities.Functions,
		"classes":    entities.Classes,
		"components": entities.Components,
		"errors":     entities.Errors,
	}

	total := 0
	for _, kind := range entityKinds {
		total += len(buckets[kind])
	}
	if total == 0 {
		return nil, nil
	}

	fileVocab := fileBasenameStems(candidatePaths)
	symbolVocab := symbolVocabulary(idx)
	matcher := semantic.NewFuzzyMatcher(true, 0.7, "levenshtein")

	found := 0
	var warnings []string
	suggestions := map[string][]string{}

	for _, kind := range entityKinds {
		vocab := symbolVocab
		if kind == "files" {
			vocab = fileVocab
		}
		for _, entity := range buckets[kind] {
			if containsFold(vocab, entity) {
				found++
				continue
			}
			sugg := suggestFor(matcher, entity, vocab)
			if len(sugg) > 0 {
				suggestions[entity] = sugg
			}
			warnings = append(warnings, fmt.Sprintf("%s:%s", singularKind(kind), entity))
		}
	}

	if float64(total-found)/float64(total) > hallucinationFraction {
		warnings = append(warnings, "likely_hallucination")
	}

	validation := &Validation{
		IsValid:     found == total,
		EntityCount: total,
		FoundCount:  found,
		Suggestions: suggestions,
	}
	return warnings, validation
}

func fileBasenameStems(paths []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		base := path.Base(p)
		stem := strings.TrimSuffix(base, path.Ext(base))
		if !seen[stem] {
			seen[stem] = true
			out = append(out, stem)
		}
		if !seen[base] {
			seen[base] = true
			out = append(out, base)
		}
	}
	return out
}

func symbolVocabulary(idx *types.CacheIndex) []string {
	if idx == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, entry := range idx.Files {
		for _, exp := range entry.Exports {
			add(exp.Name)
		}
		for _, fn := range entry.Functions {
			add(fn.Name)
		}
		for _, c := range entry.Classes {
			add(c)
		}
		for _, c := range entry.Components {
			add(c)
		}
	}
	return out
}

func containsFold(vocab []string, entity string) bool {
	for _, v := range vocab {
		if strings.EqualFold(v, entity) {
			return true
		}
	}
	return false
}

func suggestFor(matcher *semantic.FuzzyMatcher, entity string, vocab []string) []string {
	type scored struct {
		name string
		sim  float64
	}
	var matches []scored
	for _, v := range vocab {
		sim := matcher.Similarity(strings.ToLower(entity), strings.ToLower(v))
		if sim >= 0.7 {
			matches = append(matches, scored{v, sim})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].sim > matches[j].sim })

	limit := len(matches)
	if limit > entitySuggestionLimit {
		limit = entitySuggestionLimit
	}
	out := make([]string, 0, limit)
	for _, m := range matches[:limit] {
		out = append(out, m.name)
	}
	return out
}
