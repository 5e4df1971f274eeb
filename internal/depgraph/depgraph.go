// Package depgraph builds an ephemeral, per-query import graph over a set
// of candidate files and derives per-file impact: direct/indirect
// dependents, related tests and config, a blast-radius score/bucket, and
// advisory warnings (spec §4.7).
package depgraph

import (
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/mantic/internal/types"
)

var (
	importDefaultRe   = regexp.MustCompile(`import\s+(\w+)\s+from\s+['"]([^'"]+)['"]`)
	importNamedRe     = regexp.MustCompile(`import\s+\{([^}]+)\}\s+from\s+['"]([^'"]+)['"]`)
	importNamespaceRe = regexp.MustCompile(`import\s+\*\s+as\s+\w+\s+from\s+['"]([^'"]+)['"]`)
	importSideEffectRe = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	importDynamicRe   = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
	requireDestructRe = regexp.MustCompile(`(?:const|let|var)\s*\{([^}]+)\}\s*=\s*require\(\s*['"]([^'"]+)['"]\s*\)`)
	requireRe         = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)

	exportFunctionRe = regexp.MustCompile(`export\s+(?:default\s+)?(?:async\s+)?function\s+(\w+)`)
	exportConstRe     = regexp.MustCompile(`export\s+(?:const|let)\s+(\w+)`)
	exportClassRe     = regexp.MustCompile(`export\s+(?:default\s+)?class\s+(\w+)`)
	exportInterfaceRe = regexp.MustCompile(`export\s+interface\s+(\w+)`)
	exportTypeRe      = regexp.MustCompile(`export\s+type\s+(\w+)`)
	exportGroupedRe   = regexp.MustCompile(`export\s*\{([^}]+)\}`)
	exportDefaultRe   = regexp.MustCompile(`export\s+default\s+(\w+)`)
)

var resolveExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ""}

const (
	maxDirectDependents   = 20
	maxIndirectDependents = 10
	maxRelatedConfig      = 5
)

var canonicalConfigBasenames = map[string]bool{
	"package.json": true, "tsconfig.json": true, ".eslintrc": true,
	"webpack.config.js": true, "vite.config.ts": true, "jest.config.js": true,
}

// BuildGraph extracts imports/exports from every candidate's file contents
// on disk and resolves relative imports against root, honouring the `@/`
// to `src/` alias convention.
func BuildGraph(root string, candidates []string) *types.DependencyGraph {
	g := types.NewDependencyGraph()
	set := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		set[c] = true
	}

	for _, rel := range candidates {
		node := &types.FileNode{}
		data, err := os.ReadFile(path.Join(root, rel))
		if err != nil {
			g.Nodes[rel] = node
			continue
		}
		content := string(data)

		imports := extractImports(content)
		for _, imp := range imports {
			node.Imports = append(node.Imports, imp.Source)
			if resolved, ok := resolveImport(rel, imp.Source, set); ok {
				if g.Reverse[resolved] == nil {
					g.Reverse[resolved] = make(map[string]bool)
				}
				g.Reverse[resolved][rel] = true
			}
		}
		node.Exports = extractExportNames(content)
		g.Nodes[rel] = node
	}

	for path, importers := range g.Reverse {
		node, ok := g.Nodes[path]
		if !ok {
			node = &types.FileNode{}
			g.Nodes[path] = node
		}
		node.Dependents = sortedKeys(importers)
	}

	return g
}

type importMatch struct {
	Source    string
	IsDefault bool
	IsDynamic bool
}

func extractImports(content string) []importMatch {
	var out []importMatch
	seen := map[string]bool{}
	add := func(source string, isDefault, isDynamic bool) {
		key := source
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, importMatch{Source: source, IsDefault: isDefault, IsDynamic: isDynamic})
	}

	for _, m := range importDefaultRe.FindAllStringSubmatch(content, -1) {
		add(m[2], true, false)
	}
	for _, m := range importNamedRe.FindAllStringSubmatch(content, -1) {
		add(m[2], false, false)
	}
	for _, m := range importNamespaceRe.FindAllStringSubmatch(content, -1) {
		add(m[1], false, false)
	}
	for _, m := range importSideEffectRe.FindAllStringSubmatch(content, -1) {
		add(m[1], false, false)
	}
	for _, m := range importDynamicRe.FindAllStringSubmatch(content, -1) {
		add(m[1], false, true)
	}
	for _, m := range requireDestructRe.FindAllStringSubmatch(content, -1) {
		add(m[2], false, false)
	}
	for _, m := range requireRe.FindAllStringSubmatch(content, -1) {
		add(m[1], false, false)
	}
	return out
}

func extractExportNames(content string) []string {
	var names []string
	for _, m := range exportFunctionRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	for _, m := range exportConstRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	for _, m := range exportClassRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	for _, m := range exportInterfaceRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	for _, m := range exportTypeRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	for _, m := range exportGroupedRe.FindAllStringSubmatch(content, -1) {
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if idx := strings.Index(part, " as "); idx >= 0 {
				part = strings.TrimSpace(part[idx+4:])
			}
			names = append(names, part)
		}
	}
	for _, m := range exportDefaultRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return dedupe(names)
}

// resolveImport resolves a relative or @/-aliased import source against
// importerPath's directory, trying the extension/directory-index probes.
// Unresolved (external) sources return ok=false.
func resolveImport(importerPath, source string, candidates map[string]bool) (string, bool) {
	if strings.HasPrefix(source, "@/") {
		source = "src/" + strings.TrimPrefix(source, "@/")
	} else if strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") {
		source = path.Join(path.Dir(importerPath), source)
	} else {
		return "", false // bare module specifier: external dependency, not resolved
	}
	source = path.Clean(source)

	for _, ext := range resolveExtensions {
		candidate := source + ext
		if candidates[candidate] {
			return candidate, true
		}
	}
	for _, ext := range resolveExtensions {
		if ext == "" {
			continue
		}
		candidate := path.Join(source, "index"+ext)
		if candidates[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// Impact computes the per-file blast-radius summary for primary within
// graph, scanning allFiles for related tests/config (spec §4.7).
func Impact(graph *types.DependencyGraph, primary string, allFiles []string) types.Impact {
	node := graph.Nodes[primary]
	var direct []string
	if node != nil {
		direct = node.Dependents
	}
	totalDirect := len(direct)
	if len(direct) > maxDirectDependents {
		direct = direct[:maxDirectDependents]
	}

	directSet := map[string]bool{primary: true}
	for _, d := range direct {
		directSet[d] = true
	}

	indirectSet := map[string]bool{}
	for _, d := range direct {
		if dn := graph.Nodes[d]; dn != nil {
			for _, indirect := range dn.Dependents {
				if !directSet[indirect] {
					indirectSet[indirect] = true
				}
			}
		}
	}
	indirect := sortedKeys(indirectSet)
	if len(indirect) > maxIndirectDependents {
		indirect = indirect[:maxIndirectDependents]
	}

	tests := relatedTests(primary, allFiles)
	cfg := relatedConfig(allFiles)

	blastScore := 10*len(direct) + 3*len(indirect) + 2*len(tests)
	if blastScore > 100 {
		blastScore = 100
	}
	bucket := bucketFor(blastScore)

	var warnings []string
	isTest := strings.Contains(primary, "test") || strings.Contains(primary, "spec")
	if len(direct) == 0 && !isTest {
		warnings = append(warnings, "possibly dead code")
	}
	if totalDirect > maxDirectDependents {
		warnings = append(warnings, "high coupling")
	}
	if len(tests) == 0 && bucket != "small" {
		warnings = append(warnings, "no tests found")
	}
	if bucket == "critical" {
		warnings = append(warnings, "proceed with caution")
	}

	return types.Impact{
		DirectDependents:   direct,
		IndirectDependents: indirect,
		RelatedTests:       tests,
		RelatedConfig:      cfg,
		BlastRadiusScore:   blastScore,
		BlastRadiusBucket:  bucket,
		Warnings:           warnings,
	}
}

func bucketFor(score int) string {
	switch {
	case score < 20:
		return "small"
	case score < 50:
		return "medium"
	case score < 80:
		return "large"
	default:
		return "critical"
	}
}

// relatedTests enumerates candidate test paths by basename transformation,
// then scans allFiles for basename containment of primary's stem.
func relatedTests(primary string, allFiles []string) []string {
	dir := path.Dir(primary)
	ext := path.Ext(primary)
	stem := strings.TrimSuffix(path.Base(primary), ext)

	candidates := []string{
		path.Join(dir, stem+".test"+ext),
		path.Join(dir, "__tests__", stem+ext),
		strings.Replace(primary, "/src/", "/tests/", 1),
		path.Join("tests", stem+".test"+ext),
	}

	set := map[string]bool{}
	exists := map[string]bool{}
	for _, f := range allFiles {
		exists[f] = true
	}

	var out []string
	for _, c := range candidates {
		if exists[c] && !set[c] {
			set[c] = true
			out = append(out, c)
		}
	}

	for _, f := range allFiles {
		if f == primary || set[f] {
			continue
		}
		base := path.Base(f)
		if strings.Contains(base, stem) && (strings.Contains(base, "test") || strings.Contains(base, "spec")) {
			set[f] = true
			out = append(out, f)
		}
	}

	sort.Strings(out)
	return out
}

func relatedConfig(allFiles []string) []string {
	var out []string
	for _, f := range allFiles {
		if canonicalConfigBasenames[path.Base(f)] {
			out = append(out, f)
			if len(out) >= maxRelatedConfig {
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func dedupe(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
