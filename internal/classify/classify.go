// Package classify implements the file classifier: a pure function from a
// repository-relative path to one of {generated, test, docs, config, code,
// other}. Classification depends only on the path string, never on file
// contents, so two runs over the same path always agree.
package classify

import (
	"path"
	"strings"

	"github.com/standardbeagle/mantic/internal/types"
)

// Priority orders tags for deprioritisation when multiple candidates tie on
// score: code ranks highest, generated lowest.
func Priority(tag types.ClassTag) int {
	switch tag {
	case types.ClassCode:
		return 100
	case types.ClassConfig:
		return 50
	case types.ClassTest:
		return 30
	case types.ClassOther:
		return 20
	case types.ClassDocs:
		return 10
	case types.ClassGenerated:
		return 0
	default:
		return 0
	}
}

// IsCanonical reports whether tag is an implementation-grade classification
// (code or config), as opposed to a derivative of one (test, docs).
func IsCanonical(tag types.ClassTag) bool {
	return tag == types.ClassCode || tag == types.ClassConfig
}

var generatedSuffixes = []string{
	".lock", ".log", ".map", ".min.js", ".min.css", ".d.ts",
}

var generatedExactBasenames = map[string]bool{
	"package-lock.json":  true,
	"yarn.lock":          true,
	"pnpm-lock.yaml":     true,
	"composer.lock":      true,
	"cargo.lock":         true,
	"go.sum":             true,
}

var generatedDirSegments = []string{
	"dist", "build", "out", "target", "bin", "obj",
	".next", ".nuxt", "coverage", "node_modules", "vendor",
	"__pycache__", ".git",
}

var testDirSegments = []string{"test", "tests", "spec", "specs", "e2e", "__tests__", "__mocks__", "mocks", "testdata", "fixtures"}

var testFileSuffixes = []string{
	".test.ts", ".test.tsx", ".test.js", ".test.jsx", ".test.go", ".test.py",
	".spec.ts", ".spec.tsx", ".spec.js", ".spec.jsx",
	"_test.go", "_test.py", "_spec.rb",
}

var docsExactBasenames = map[string]bool{
	"readme.md": true, "readme": true, "readme.txt": true,
	"changelog.md": true, "changelog": true,
	"license": true, "license.md": true, "license.txt": true,
	"contributing.md": true, "code_of_conduct.md": true,
	"authors": true, "notice": true,
}

var docsExtensions = map[string]bool{".md": true, ".mdx": true, ".rst": true, ".adoc": true}

var configExactBasenames = map[string]bool{
	"package.json": true, "tsconfig.json": true, "jsconfig.json": true,
	"go.mod": true, "cargo.toml": true, "pyproject.toml": true, "setup.py": true, "setup.cfg": true,
	"dockerfile": true, "makefile": true, "procfile": true,
	".eslintrc": true, ".eslintrc.json": true, ".eslintrc.js": true, ".eslintrc.yml": true, ".eslintrc.yaml": true,
	".prettierrc": true, ".prettierrc.json": true, ".prettierrc.js": true, ".prettierrc.yml": true,
	".babelrc": true, ".editorconfig": true,
	"docker-compose.yml": true, "docker-compose.yaml": true,
	"requirements.txt": true, "pipfile": true, "gemfile": true,
	".gitignore": true, ".gitattributes": true, ".npmrc": true,
	".mantic.kdl": true,
}

var configExtensions = map[string]bool{
	".yml": true, ".yaml": true, ".toml": true, ".ini": true, ".cfg": true,
}

var codeExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".go": true, ".rs": true, ".py": true, ".rb": true, ".java": true, ".kt": true,
	".c": true, ".h": true, ".cc": true, ".cpp": true, ".hpp": true, ".cs": true,
	".php": true, ".swift": true, ".scala": true, ".zig": true, ".vue": true, ".svelte": true,
}

var binaryAssetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".ico": true, ".svg": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".mp4": true, ".mp3": true, ".wav": true, ".avi": true, ".mov": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".map": true,
}

// Classify is a pure function of path: generated is checked first, then
// test, then docs, then config, then code, else other (spec §4.3).
func Classify(relPath string) types.ClassTag {
	p := strings.ToLower(path.Clean(filepathToSlash(relPath)))
	base := path.Base(p)
	ext := path.Ext(base)
	segments := strings.Split(p, "/")

	if isGenerated(p, base, ext, segments) {
		return types.ClassGenerated
	}
	if isTest(p, base, segments) {
		return types.ClassTest
	}
	if isDocs(p, base, ext) {
		return types.ClassDocs
	}
	if isConfig(p, base, ext) {
		return types.ClassConfig
	}
	if codeExtensions[ext] {
		return types.ClassCode
	}
	return types.ClassOther
}

// IsBinaryAsset reports whether the path's extension is a binary asset the
// structural scorer eliminates before scoring (spec §4.4 stage 1).
func IsBinaryAsset(relPath string) bool {
	ext := path.Ext(strings.ToLower(relPath))
	return binaryAssetExtensions[ext]
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func isGenerated(p, base, ext string, segments []string) bool {
	if generatedExactBasenames[base] {
		return true
	}
	for _, suf := range generatedSuffixes {
		if strings.HasSuffix(base, suf) {
			return true
		}
	}
	for _, seg := range segments[:len(segments)-1] {
		for _, gen := range generatedDirSegments {
			if seg == gen {
				return true
			}
		}
	}
	_ = ext
	return false
}

func isTest(p, base string, segments []string) bool {
	for _, suf := range testFileSuffixes {
		if strings.HasSuffix(base, suf) {
			return true
		}
	}
	for _, seg := range segments[:len(segments)-1] {
		for _, td := range testDirSegments {
			if seg == td {
				return true
			}
		}
	}
	return false
}

func isDocs(p, base, ext string) bool {
	if docsExactBasenames[base] {
		return true
	}
	if docsExtensions[ext] {
		return true
	}
	if strings.Contains(p, "/docs/") || strings.HasPrefix(p, "docs/") {
		return true
	}
	return false
}

func isConfig(p, base, ext string) bool {
	if configExactBasenames[base] {
		return true
	}
	if configExtensions[ext] {
		return true
	}
	if strings.Contains(base, ".config.") {
		return true
	}
	if strings.HasPrefix(base, ".env") {
		return true
	}
	if strings.HasPrefix(base, "dockerfile") || strings.HasPrefix(base, "dockerfile.") {
		return true
	}
	return false
}

// CanonicalBasename strips the first matching derivative suffix of
// .test/.spec/.e2e/.stories/.d, then _test/_spec, from the name before its
// extension, so canonical-duplicate detection (spec §4.9) can pair
// "x.test.ts" with "x.ts". Markdown names get no special treatment.
func CanonicalBasename(relPath string) string {
	base := path.Base(filepathToSlash(relPath))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for _, suf := range []string{".test", ".spec", ".e2e", ".stories", ".d"} {
		if strings.HasSuffix(stem, suf) {
			stem = strings.TrimSuffix(stem, suf)
			break
		}
	}
	// Go/Python/Ruby suffix-only conventions (no dot separator).
	for _, suf := range []string{"_test", "_spec"} {
		if strings.HasSuffix(stem, suf) {
			stem = strings.TrimSuffix(stem, suf)
			break
		}
	}
	return stem + ext
}
