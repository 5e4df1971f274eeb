package semindex

import (
	"path"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/mantic/internal/errors"
	"github.com/standardbeagle/mantic/internal/types"
)

// languageExtensions is the closed set of source-language variants the
// index supports (spec §4.5).
var languageExtensions = map[string]string{
	".ts":  "typescript",
	".tsx": "tsx",
	".js":  "javascript",
	".jsx": "jsx",
}

// LanguageFor reports the language tag for relPath, and whether it is a
// supported source type at all.
func LanguageFor(relPath string) (string, bool) {
	lang, ok := languageExtensions[strings.ToLower(path.Ext(relPath))]
	return lang, ok
}

var (
	importDefaultRe    = regexp.MustCompile(`import\s+(\w+)\s+from\s+['"]([^'"]+)['"]`)
	importNamedRe      = regexp.MustCompile(`import\s+\{([^}]+)\}\s+from\s+['"]([^'"]+)['"]`)
	importNamespaceRe  = regexp.MustCompile(`import\s+\*\s+as\s+(\w+)\s+from\s+['"]([^'"]+)['"]`)
	importDynamicRe    = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)

	exportFunctionRe  = regexp.MustCompile(`export\s+(default\s+)?(async\s+)?function\s+(\w+)`)
	exportConstRe      = regexp.MustCompile(`export\s+(const|let|var)\s+(\w+)`)
	exportClassRe      = regexp.MustCompile(`export\s+(default\s+)?class\s+(\w+)`)
	exportInterfaceRe  = regexp.MustCompile(`export\s+interface\s+(\w+)`)
	exportTypeRe       = regexp.MustCompile(`export\s+type\s+(\w+)`)
	exportDefaultIdRe  = regexp.MustCompile(`export\s+default\s+(\w+)`)

	functionDeclRe = regexp.MustCompile(`(export\s+)?(async\s+)?function\s+(\w+)\s*\(`)
	arrowConstRe   = regexp.MustCompile(`(export\s+)?const\s+(\w+)\s*=\s*(async\s*)?\([^)]*\)\s*=>`)
	classDeclRe    = regexp.MustCompile(`(export\s+)?(default\s+)?class\s+(\w+)`)
	interfaceRe    = regexp.MustCompile(`interface\s+(\w+)`)
	typeAliasRe    = regexp.MustCompile(`type\s+(\w+)\s*=`)

	componentFuncRe  = regexp.MustCompile(`function\s+([A-Z]\w+)\s*\(`)
	componentArrowRe = regexp.MustCompile(`const\s+([A-Z]\w+)\s*[:=]`)
	componentClassRe = regexp.MustCompile(`class\s+([A-Z]\w+)\s+extends\s+(React\.)?Component`)

	jsxTextRe      = regexp.MustCompile(`>([^<>{}\n]{2,40})<`)
	stringLiteralRe = regexp.MustCompile(`['"]([^'"\n]{2,80})['"]`)
)

// keywordVocabulary is the fixed pattern list a file's JSX text / string
// literal content is matched against to populate FileEntry.Keywords
// (spec §4.5).
var keywordVocabulary = []string{
	"login", "logout", "auth", "session", "token", "password",
	"button", "modal", "dialog", "form", "input", "submit",
	"style", "theme", "color", "layout",
	"performance", "cache", "optimize",
	"api", "server", "database", "query", "endpoint",
	"test", "mock", "fixture",
	"config", "setting", "environment",
}

// ParseResult is the best-effort extraction output for a single file.
type ParseResult struct {
	Exports    []types.ExportEntry
	Imports    []types.ImportEntry
	Components []string
	Keywords   []string
	Functions  []types.FunctionEntry
	Classes    []string
	Types      []string
	ParseError string
}

// ParseSource runs the regex extraction pipeline, then attempts a
// tree-sitter structural verification pass for the supported grammars;
// a grammar load failure or a parse error in the resulting tree is
// recorded but never aborts the scan — regex results still stand, per
// spec.md's Non-goal on syntactic correctness.
func ParseSource(relPath, lang string, content []byte) ParseResult {
	text := string(content)

	result := ParseResult{
		Imports:    extractImports(text),
		Exports:    extractExports(text),
		Functions:  extractFunctions(text),
		Classes:    extractClasses(text),
		Types:      extractTypes(text),
		Components: extractComponents(text),
		Keywords:   extractKeywords(text),
	}

	if verifyErr := verifyWithTreeSitter(lang, content); verifyErr != nil {
		result.ParseError = errors.NewParseError(relPath, verifyErr).Error()
	}

	return result
}

func extractImports(text string) []types.ImportEntry {
	var out []types.ImportEntry
	seen := map[string]bool{}
	add := func(source string, names []string, isDefault, isDynamic bool) {
		key := source + "|" + strings.Join(names, ",")
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, types.ImportEntry{Source: source, Names: names, IsDefault: isDefault, IsDynamic: isDynamic})
	}

	for _, m := range importDefaultRe.FindAllStringSubmatch(text, -1) {
		add(m[2], []string{m[1]}, true, false)
	}
	for _, m := range importNamedRe.FindAllStringSubmatch(text, -1) {
		add(m[2], splitNames(m[1]), false, false)
	}
	for _, m := range importNamespaceRe.FindAllStringSubmatch(text, -1) {
		add(m[2], []string{m[1]}, false, false)
	}
	for _, m := range importDynamicRe.FindAllStringSubmatch(text, -1) {
		add(m[1], nil, false, true)
	}
	return out
}

func splitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, " as "); idx >= 0 {
			part = strings.TrimSpace(part[:idx])
		}
		names = append(names, part)
	}
	return names
}

func extractExports(text string) []types.ExportEntry {
	var out []types.ExportEntry
	for _, m := range exportFunctionRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.ExportEntry{Name: m[3], Kind: "function"})
	}
	for _, m := range exportConstRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.ExportEntry{Name: m[2], Kind: "const"})
	}
	for _, m := range exportClassRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.ExportEntry{Name: m[2], Kind: "class"})
	}
	for _, m := range exportInterfaceRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.ExportEntry{Name: m[1], Kind: "interface"})
	}
	for _, m := range exportTypeRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.ExportEntry{Name: m[1], Kind: "type"})
	}
	for _, m := range exportDefaultIdRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.ExportEntry{Name: m[1], Kind: "default"})
	}
	return out
}

func extractFunctions(text string) []types.FunctionEntry {
	var out []types.FunctionEntry
	for _, m := range functionDeclRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.FunctionEntry{Name: m[3], Async: m[2] != "", Exported: m[1] != ""})
	}
	for _, m := range arrowConstRe.FindAllStringSubmatch(text, -1) {
		out = append(out, types.FunctionEntry{Name: m[2], Async: m[3] != "", Exported: m[1] != ""})
	}
	return out
}

func extractClasses(text string) []string {
	var out []string
	for _, m := range classDeclRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[3])
	}
	return dedupe(out)
}

func extractTypes(text string) []string {
	var out []string
	for _, m := range interfaceRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	for _, m := range typeAliasRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return dedupe(out)
}

// extractComponents best-effort-detects React/Vue-style components: a
// function, arrow, or class declaration with a capitalised name.
func extractComponents(text string) []string {
	var out []string
	for _, m := range componentFuncRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	for _, m := range componentArrowRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	for _, m := range componentClassRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return dedupe(out)
}

func extractKeywords(text string) []string {
	found := map[string]bool{}

	scan := func(snippet string) {
		lower := strings.ToLower(snippet)
		for _, kw := range keywordVocabulary {
			if strings.Contains(lower, kw) {
				found[kw] = true
			}
		}
	}

	for _, m := range jsxTextRe.FindAllStringSubmatch(text, -1) {
		scan(m[1])
	}
	for _, m := range stringLiteralRe.FindAllStringSubmatch(text, -1) {
		scan(m[1])
	}

	var out []string
	for _, kw := range keywordVocabulary {
		if found[kw] {
			out = append(out, kw)
		}
	}
	return out
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

// verifyWithTreeSitter parses content with the grammar for lang and
// reports a structural-verification error when the grammar is
// unavailable for this build or the resulting tree contains a syntax
// error. Only typescript/tsx/javascript/jsx are wired: the index's
// supported source-language set is closed to those four variants
// (spec §4.5), so no other grammar is imported.
func verifyWithTreeSitter(lang string, content []byte) error {
	var languagePtr *tree_sitter.Language
	switch lang {
	case "typescript":
		languagePtr = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case "tsx":
		languagePtr = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	case "javascript", "jsx":
		languagePtr = tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	default:
		return nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(languagePtr); err != nil {
		return err // grammar failed to load: caller keeps the regex-only result
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return errors.NewParseError("", nil) // best-effort signal only; regex extraction already stands
	}
	return nil
}
