// Package smartfilter implements the index-aware rescoring pass: when the
// semantic index is fresh and query intent is confident, it replaces the
// structural scorer's output with a rescored list driven by actual
// imports/exports/components/keywords recorded in the index, plus
// version-control recency and cross-session context carryover (spec §4.6).
package smartfilter

import (
	"context"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/standardbeagle/mantic/internal/types"
)

// Applicable reports whether the smart filter should run in place of the
// raw structural scorer output.
func Applicable(idx *types.CacheIndex, intent types.IntentAnalysis) bool {
	return idx != nil && intent.Confidence > 0.5 && intent.Category != types.IntentGeneral
}

// constraintKind is the closed set of index-aware rescoring signals.
type constraintKind string

const (
	constraintUsage         constraintKind = "usage"
	constraintImport        constraintKind = "import"
	constraintExport        constraintKind = "export"
	constraintKeyword       constraintKind = "keyword"
	constraintComponentType constraintKind = "component-type"
	constraintPath          constraintKind = "path"
)

type constraintSpec struct {
	kind        constraintKind
	cost        float64
	selectivity float64
}

// orderedConstraints is sorted by selectivity/(cost+0.1) descending.
// Usage carries the highest selectivity estimate (it is the strongest
// usage-vs-dead-code signal available) so it sorts first despite its
// cost of 8 — a check against the imports of every index entry.
var orderedConstraints = sortedConstraints([]constraintSpec{
	{constraintUsage, 8, 0.9},
	{constraintImport, 2, 0.2},
	{constraintExport, 2, 0.2},
	{constraintKeyword, 1, 0.08},
	{constraintComponentType, 5, 0.3},
	{constraintPath, 1, 0.03},
})

func sortedConstraints(specs []constraintSpec) []constraintSpec {
	sort.SliceStable(specs, func(i, j int) bool {
		return specs[i].selectivity/(specs[i].cost+0.1) > specs[j].selectivity/(specs[j].cost+0.1)
	})
	return specs
}

const (
	importMatchScore        = 20.0
	exportMatchScore        = 25.0
	componentTypeScore      = 15.0
	keywordScore            = 5.0
	exactStemScore          = 100.0
	substringStemScore      = 3.0
	usageMatchScore         = 30.0
	usageMissScore          = -50.0
	recencyBoost            = 200.0
	contextCarryoverBoost   = 150.0
	earlyTerminateCount     = 5
	earlyTerminateThreshold = 50.0
	recentWindow            = 10 * time.Minute
)

// Options configures a rescoring pass.
type Options struct {
	RecentlyChanged map[string]bool // VCS-reported modified paths
	Prior           *ContextPointer // legacy cross-session pointer, may be nil
}

// Rescore produces the smart-filter's replacement ScoredFile list.
// Candidates must already carry the structural scorer's base score and
// be sorted (score desc, path asc); that order determines which
// candidates receive the full constraint evaluation before the
// early-termination budget is spent.
func Rescore(candidates []types.ScoredFile, idx *types.CacheIndex, intent types.IntentAnalysis, opts Options) []types.ScoredFile {
	out := make([]types.ScoredFile, len(candidates))
	copy(out, candidates)

	importedBasenames := indexImportBasenames(idx)

	overThreshold := 0
	for i := range out {
		if overThreshold >= earlyTerminateCount {
			break
		}
		entry := idx.Files[out[i].Path]
		contrib, reasons := applyConstraints(out[i].Path, entry, intent, importedBasenames)
		out[i].Score = round2(out[i].Score + contrib)
		out[i].Reasons = appendUnique(out[i].Reasons, reasons...)
		if out[i].Score > earlyTerminateThreshold {
			overThreshold++
		}
	}

	applyRecencyBoost(out, idx, opts.RecentlyChanged)
	out = applyContextCarryover(out, intent, opts.Prior)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func applyConstraints(relPath string, entry *types.FileEntry, intent types.IntentAnalysis, importedBasenames map[string]bool) (float64, []string) {
	var sum float64
	var reasons []string

	for _, c := range orderedConstraints {
		switch c.kind {
		case constraintUsage:
			if entry == nil {
				continue
			}
			stem := basenameStem(relPath)
			if len(entry.Exports) > 0 && importedBasenames[stem] {
				sum += usageMatchScore
				reasons = append(reasons, "usage")
			} else {
				sum += usageMissScore
			}
		case constraintImport:
			if entry == nil {
				continue
			}
			for _, imp := range entry.Imports {
				if keywordMatchesAny(basenameStem(imp.Source), intent.Keywords) {
					sum += importMatchScore
					reasons = append(reasons, "import-match")
					break
				}
			}
		case constraintExport:
			if entry == nil {
				continue
			}
			for _, exp := range entry.Exports {
				if keywordMatchesAny(exp.Name, intent.Keywords) {
					sum += exportMatchScore
					reasons = append(reasons, "export-match")
					break
				}
			}
		case constraintKeyword:
			if entry == nil {
				continue
			}
			for _, kw := range entry.Keywords {
				if keywordMatchesAny(kw, intent.Keywords) {
					sum += keywordScore
					reasons = append(reasons, "keyword-match")
					break
				}
			}
		case constraintComponentType:
			if entry == nil {
				continue
			}
			if len(entry.Components) > 0 && intent.Category == types.IntentUI {
				sum += componentTypeScore
				reasons = append(reasons, "component-type")
			}
		case constraintPath:
			stem := strings.ToLower(basenameStem(relPath))
			matched := false
			for _, kw := range intent.Keywords {
				lkw := strings.ToLower(kw)
				if stem == lkw {
					sum += exactStemScore
					reasons = append(reasons, "exact-file:"+kw)
					matched = true
					break
				}
			}
			if !matched {
				for _, kw := range intent.Keywords {
					if strings.Contains(stem, strings.ToLower(kw)) {
						sum += substringStemScore
						reasons = append(reasons, "filename-match")
						break
					}
				}
			}
		}
	}
	return sum, reasons
}

// indexImportBasenames returns the set of import-source basenames (minus
// a .ts/.tsx/.js/.jsx/.mjs extension, if present) that appear anywhere in
// the index, used for the usage heuristic (is this file imported by
// anything else). "./auth.service" yields "auth.service", matching the
// basenameStem of "auth.service.ts".
func indexImportBasenames(idx *types.CacheIndex) map[string]bool {
	out := map[string]bool{}
	for _, entry := range idx.Files {
		for _, imp := range entry.Imports {
			base := path.Base(imp.Source)
			switch path.Ext(base) {
			case ".ts", ".tsx", ".js", ".jsx", ".mjs":
				base = strings.TrimSuffix(base, path.Ext(base))
			}
			out[base] = true
		}
	}
	return out
}

func basenameStem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func keywordMatchesAny(candidate string, keywords []string) bool {
	lc := strings.ToLower(candidate)
	for _, kw := range keywords {
		if lc == strings.ToLower(kw) {
			return true
		}
	}
	return false
}

func applyRecencyBoost(files []types.ScoredFile, idx *types.CacheIndex, recentlyChanged map[string]bool) {
	now := time.Now()
	for i := range files {
		recent := recentlyChanged != nil && recentlyChanged[files[i].Path]
		if !recent {
			if entry := idx.Files[files[i].Path]; entry != nil && now.Sub(entry.ModTime) < recentWindow && !entry.ModTime.IsZero() {
				recent = true
			}
		}
		if recent {
			files[i].Score = round2(files[i].Score + recencyBoost)
			files[i].Reasons = appendUnique(files[i].Reasons, "recently-modified")
		}
	}
}

// ContextPointer is the legacy cross-session carryover record persisted
// at `.mantic/session.json` (distinct from the per-id session documents
// under `.mantic/sessions/`).
type ContextPointer struct {
	Query    string   `json:"query"`
	Keywords []string `json:"keywords"`
	Paths    []string `json:"paths"`
}

// applyContextCarryover detects a high-keyword-overlap follow-up query
// against prior and either restricts the result set to prior.Paths
// (exclusive filter, overlap > 0.75) or boosts them (0.70 < overlap
// <= 0.75). Below 0.70 the prior context has no effect.
func applyContextCarryover(files []types.ScoredFile, intent types.IntentAnalysis, prior *ContextPointer) []types.ScoredFile {
	if prior == nil || len(prior.Keywords) == 0 || len(intent.Keywords) == 0 {
		return files
	}

	overlap := keywordOverlap(intent.Keywords, prior.Keywords)
	if overlap <= 0.70 {
		return files
	}

	priorSet := make(map[string]bool, len(prior.Paths))
	for _, p := range prior.Paths {
		priorSet[p] = true
	}

	if overlap > 0.75 {
		filtered := files[:0:0]
		for _, f := range files {
			if priorSet[f.Path] {
				filtered = append(filtered, f)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
		return files
	}

	for i := range files {
		if priorSet[files[i].Path] {
			files[i].Score = round2(files[i].Score + contextCarryoverBoost)
			files[i].Reasons = appendUnique(files[i].Reasons, "context-carryover")
		}
	}
	return files
}

// keywordOverlap is the fraction of newKeywords that also appear
// (case-insensitively) in priorKeywords.
func keywordOverlap(newKeywords, priorKeywords []string) float64 {
	priorSet := make(map[string]bool, len(priorKeywords))
	for _, kw := range priorKeywords {
		priorSet[strings.ToLower(kw)] = true
	}
	matched := 0
	for _, kw := range newKeywords {
		if priorSet[strings.ToLower(kw)] {
			matched++
		}
	}
	return float64(matched) / float64(len(newKeywords))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func appendUnique(existing []string, add ...string) []string {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e] = true
	}
	out := existing
	for _, a := range add {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// WithExactLines annotates the top 10 survivors of files with exact-line
// excerpts for the primary query keyword, reading each file under root.
// Suspends on file reads; ctx cancellation aborts remaining lookups
// without failing results already computed.
func WithExactLines(ctx context.Context, root string, files []types.ScoredFile, intent types.IntentAnalysis) []types.ScoredFile {
	keyword := primaryKeyword(intent.Keywords)
	if keyword == "" {
		return files
	}

	limit := len(files)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		select {
		case <-ctx.Done():
			return files
		default:
		}
		lines := findMatchedLines(root, files[i].Path, keyword)
		if len(lines) > 0 {
			files[i].MatchedLines = lines
		}
	}
	return files
}

var genericUITerms = map[string]bool{
	"ui": true, "page": true, "screen": true, "component": true,
	"view": true, "show": true, "display": true, "render": true,
	"button": true, "modal": true, "dialog": true,
}

// primaryKeyword picks the first query keyword that is not a generic UI
// term and does not look like a filename (contains a path separator or
// a dotted extension).
func primaryKeyword(keywords []string) string {
	for _, kw := range keywords {
		lkw := strings.ToLower(kw)
		if genericUITerms[lkw] {
			continue
		}
		if strings.ContainsAny(kw, "/.") {
			continue
		}
		return kw
	}
	return ""
}
