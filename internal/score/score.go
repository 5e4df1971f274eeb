// Package score implements the structural scorer: metadata-only per-file
// scoring from path structure, filename morphology, directory weights,
// and file classification (spec §4.4). No file contents are read in the
// hot path.
package score

import (
	"math"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/mantic/internal/classify"
	"github.com/standardbeagle/mantic/internal/config"
	"github.com/standardbeagle/mantic/internal/types"
)

var implDirRe = regexp.MustCompile(`(^|/)(src|lib|modules|services|api|server|core|features)(/|$)`)

var businessLogicRe = regexp.MustCompile(`\.(service|controller|handler|repository|manager|provider|helper|utils?|model|schema)\.`)

var boilerplateRe = regexp.MustCompile(`(^|/)(page|layout|route|index|app|main)\.[^/]+$`)

var defaultExtensionWeight = 0.5

var importantConfigBasenames = map[string]bool{
	"dockerfile": true, "makefile": true, "procfile": true,
}

// Options configures a scoring run.
type Options struct {
	Config         config.Scoring
	SessionBoosts  map[string]types.BoostCandidate // path -> boost, from the session manager
	RecentlyChanged map[string]bool                // paths VCS-reports as modified, for the recently-modified reason tag
	TopN           int // overrides Config.TopN when > 0
}

// Score ranks candidates for the given intent and returns the top-N
// ScoredFile list, sorted deterministically (score desc, path asc).
func Score(candidates []types.FileCandidate, intent types.IntentAnalysis, opts Options) []types.ScoredFile {
	cfg := opts.Config
	results := make([]types.ScoredFile, 0, len(candidates))

	for _, c := range candidates {
		if classify.IsBinaryAsset(c.Path) {
			continue
		}
		tag := c.Class
		if tag == "" {
			tag = classify.Classify(c.Path)
		}

		sf := scoreOne(c.Path, tag, intent, cfg, opts)
		results = append(results, sf)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	topN := opts.TopN
	if topN <= 0 {
		topN = cfg.TopN
	}
	if topN <= 0 {
		topN = config.DefaultTopN
	}
	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

func scoreOne(relPath string, tag types.ClassTag, intent types.IntentAnalysis, cfg config.Scoring, opts Options) types.ScoredFile {
	var reasons []string
	sum := 0.0

	base := path.Base(relPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	lowerStem := strings.ToLower(stem)
	lowerPath := strings.ToLower(relPath)
	nonImpl := tag != types.ClassCode

	for _, kw := range intent.Keywords {
		lkw := strings.ToLower(kw)
		switch {
		case lowerStem == lkw:
			sum += valueOr(cfg.ExactFilenameMatch, config.DefaultExactFilenameMatch)
			reasons = append(reasons, "exact-file:"+kw)
			if nonImpl {
				sum += valueOr(cfg.ExactFilenameMatchAux, config.DefaultExactFilenameMatchAux)
			}
		case strings.Contains(lowerStem, lkw):
			sum += valueOr(cfg.SubstringMatch, config.DefaultSubstringMatch)
			reasons = append(reasons, "filename-match")
			if nonImpl {
				sum += valueOr(cfg.SubstringMatchAux, config.DefaultSubstringMatchAux)
			}
		case wholeWordMatch(lowerStem, lkw):
			sum += valueOr(cfg.WholeWordMatch, config.DefaultWholeWordMatch)
			reasons = append(reasons, "keyword-match")
			if nonImpl {
				sum += valueOr(cfg.WholeWordMatchAux, config.DefaultWholeWordMatchAux)
			}
		}
	}

	if dirWeight := directoryWeight(relPath, intent.Category, cfg.DirectoryWeights); dirWeight > 0 {
		sum += valueOr(cfg.DirectoryWeightUnit, config.DefaultDirectoryWeightUnit) * dirWeight
		reasons = append(reasons, "dir-weight")
	}

	if implDirRe.MatchString(lowerPath) {
		sum += valueOr(cfg.ImplDirBonus, config.DefaultImplDirBonus)
		reasons = append(reasons, "impl-dir")
	}

	if businessLogicRe.MatchString(lowerPath) {
		sum *= valueOr(cfg.BusinessLogicMultiplier, config.DefaultBusinessLogicMultiplier)
		reasons = append(reasons, "business-logic")
	}

	if boilerplateRe.MatchString(lowerPath) {
		sum *= valueOr(cfg.BoilerplateMultiplier, config.DefaultBoilerplateMultiplier)
		reasons = append(reasons, "boilerplate")
	}

	sum *= extensionWeight(ext, base, cfg.ExtensionWeights)

	depth := strings.Count(relPath, "/")
	threshold := cfg.DepthPenaltyThreshold
	if threshold <= 0 {
		threshold = config.DefaultDepthPenaltyThreshold
	}
	if depth > threshold {
		sum -= valueOr(cfg.DepthPenaltyPerLevel, config.DefaultDepthPenaltyPerLevel) * float64(depth-threshold)
	}

	if classify.IsCanonical(tag) {
		sum += valueOr(cfg.CanonicalBonus, config.DefaultCanonicalBonus)
		reasons = append(reasons, "canonical")
	}
	if tag == types.ClassTest {
		sum += valueOr(cfg.TestPenalty, config.DefaultTestPenalty)
	}
	if tag == types.ClassDocs {
		sum += valueOr(cfg.DocsPenalty, config.DefaultDocsPenalty)
	}

	if opts.RecentlyChanged != nil && opts.RecentlyChanged[relPath] {
		sum += 1 // tagged but the recency *boost* magnitude belongs to the smart filter (spec §4.6); structural scorer only flags it
		reasons = append(reasons, "recently-modified")
	}

	if opts.SessionBoosts != nil {
		if boost, ok := opts.SessionBoosts[relPath]; ok {
			sum += boost.BoostFactor
			reasons = append(reasons, "context-carryover")
		}
	}

	if sum < 0 {
		sum = 0
	}

	return types.ScoredFile{
		Path:     relPath,
		Score:    math.Round(sum*100) / 100,
		Reasons:  dedupeReasons(reasons),
		FileType: tag,
	}
}

func wholeWordMatch(stem, keyword string) bool {
	normalized := strings.ReplaceAll(strings.ReplaceAll(stem, "-", " "), "_", " ")
	for _, word := range strings.Fields(normalized) {
		if word == keyword {
			return true
		}
	}
	return false
}

// directoryWeight sums every matching directory-prefix weight for the
// given category, matching either at the path start or as an interior
// segment (substring variant, per spec §9's determinism resolution of
// the ambiguous-source open question).
func directoryWeight(relPath string, category types.IntentCategory, weights map[string]map[string]float64) float64 {
	table, ok := weights[string(category)]
	if !ok {
		return 0
	}
	lower := strings.ToLower(relPath)
	total := 0.0
	for prefix, weight := range table {
		p := strings.ToLower(prefix)
		if strings.HasPrefix(lower, p) || strings.Contains(lower, "/"+p) {
			total += weight
		}
	}
	return total
}

func extensionWeight(ext, base string, weights map[string]float64) float64 {
	if weights != nil {
		if w, ok := weights[strings.ToLower(ext)]; ok {
			return w
		}
	}
	if ext == "" && importantConfigBasenames[strings.ToLower(base)] {
		return 1.0
	}
	return defaultExtensionWeight
}

func valueOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func dedupeReasons(reasons []string) []string {
	if len(reasons) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range reasons {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
