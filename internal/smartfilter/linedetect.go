package smartfilter

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/mantic/internal/types"
)

const (
	priorityJSXText = iota
	priorityProp
	priorityStringLiteral
	priorityOther
)

var (
	jsxTextLineRe = regexp.MustCompile(`>([^<>{}]{2,80})<`)
	propLineRe    = regexp.MustCompile(`\w+\s*=\s*[{"']`)
	stringLitRe   = regexp.MustCompile(`['"]([^'"]{2,80})['"]`)
)

type matchCandidate struct {
	line     int
	content  string
	priority int
}

// findMatchedLines streams relPath under root and returns up to 3
// meaningful occurrences of keyword, ranked JSX-text > prop-bearing >
// string-literal > other, then by ascending line number.
func findMatchedLines(root, relPath, keyword string) []types.MatchedLine {
	data, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil
	}

	lower := strings.ToLower(keyword)
	var candidates []matchCandidate
	for i, raw := range strings.Split(string(data), "\n") {
		if !strings.Contains(strings.ToLower(raw), lower) {
			continue
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		candidates = append(candidates, matchCandidate{
			line:     i + 1,
			content:  trimmed,
			priority: classifyLine(raw),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].line < candidates[j].line
	})

	limit := len(candidates)
	if limit > 3 {
		limit = 3
	}

	out := make([]types.MatchedLine, 0, limit)
	for _, c := range candidates[:limit] {
		out = append(out, types.MatchedLine{
			Line:    c.line,
			Content: truncate(c.content, 200),
			Keyword: keyword,
		})
	}
	return out
}

func classifyLine(line string) int {
	switch {
	case jsxTextLineRe.MatchString(line):
		return priorityJSXText
	case propLineRe.MatchString(line):
		return priorityProp
	case stringLitRe.MatchString(line):
		return priorityStringLiteral
	default:
		return priorityOther
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
