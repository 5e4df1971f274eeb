package contextbuilder

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/mantic/internal/classify"
)

var canonicalDerivativeSuffixes = []string{".test", ".spec", ".e2e", ".stories", ".d"}
var canonicalDerivativeUnderscoreSuffixes = []string{"_test", "_spec"}

// canonicalStem strips test/spec/e2e/stories/.d-style derivative markers
// and the extension, so "login.test.ts" and "login.ts" group together
// regardless of directory.
func canonicalStem(relPath string) string {
	base := path.Base(relPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for _, suf := range canonicalDerivativeSuffixes {
		if strings.HasSuffix(stem, suf) {
			return strings.TrimSuffix(stem, suf)
		}
	}
	for _, suf := range canonicalDerivativeUnderscoreSuffixes {
		if strings.HasSuffix(stem, suf) {
			return strings.TrimSuffix(stem, suf)
		}
	}
	return stem
}

// canonicalDuplicateWarnings groups candidatePaths by canonicalStem and
// flags groups that mix a canonical (code/config) member with a
// derivative (test/docs) member, or contain only derivatives (spec
// §4.9).
func canonicalDuplicateWarnings(candidatePaths []string) []string {
	groups := map[string][]string{}
	for _, p := range candidatePaths {
		groups[canonicalStem(p)] = append(groups[canonicalStem(p)], p)
	}

	var warnings []string
	for stem, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)

		var canonical []string
		var derivativeTests []string
		var derivativeDocs []string
		for _, m := range members {
			tag := classify.Classify(m)
			switch {
			case classify.IsCanonical(tag):
				canonical = append(canonical, m)
			case tag == "test":
				derivativeTests = append(derivativeTests, m)
			case tag == "docs":
				derivativeDocs = append(derivativeDocs, m)
			}
		}

		if len(canonical) > 0 {
			for _, d := range derivativeTests {
				warnings = append(warnings, fmt.Sprintf("duplicate_test:%s->%s", d, canonical[0]))
			}
			for _, d := range derivativeDocs {
				warnings = append(warnings, fmt.Sprintf("duplicate_docs:%s->%s", d, canonical[0]))
			}
		} else if len(derivativeTests)+len(derivativeDocs) > 0 {
			warnings = append(warnings, fmt.Sprintf("prefer_canonical:%s", stem))
		}
	}

	sort.Strings(warnings)
	return warnings
}
