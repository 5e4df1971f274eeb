package config

import (
	"os"
	"runtime"
)

// Default scoring constants for the structural scorer (spec §4.4). Named so
// both code and .mantic.kdl parsing share the same baseline values.
const (
	DefaultExactFilenameMatch     = 100.0
	DefaultExactFilenameMatchAux  = 10.0 // added when file is non-implementation
	DefaultSubstringMatch         = 50.0
	DefaultSubstringMatchAux      = 5.0
	DefaultWholeWordMatch         = 30.0
	DefaultWholeWordMatchAux      = 3.0
	DefaultDirectoryWeightUnit    = 20.0
	DefaultImplDirBonus           = 40.0
	DefaultBusinessLogicMultiplier = 1.5
	DefaultBoilerplateMultiplier  = 0.3
	DefaultDepthPenaltyPerLevel   = 1.0
	DefaultDepthPenaltyThreshold  = 5
	DefaultCanonicalBonus         = 30.0
	DefaultTestPenalty            = -40.0
	DefaultDocsPenalty            = -50.0
	DefaultRecencyBoost           = 200.0
	DefaultTopN                  = 100
)

// Config is the root configuration for a mantic run, built from defaults,
// overridden by `.mantic.kdl` and `MANTIC_*` environment variables, and
// finally by CLI flags.
type Config struct {
	Version     int
	Project     Project
	Enumerate   Enumerate
	Scoring     Scoring
	Semantic    Semantic
	Session     Session
	Performance Performance
	FeatureFlags FeatureFlags
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

// Enumerate controls the file enumerator (spec §4.1).
type Enumerate struct {
	MaxFileCount         int  // skip untracked-file query above this many tracked files
	RespectGitignore     bool
	FollowSymlinks       bool
	WalkerMaxDepth        int // bound for the filepath.WalkDir fallback
	ScanTimeoutSec        int // overall enumeration deadline
	WatchMode             bool
	WatchDebounceMs       int
}

// Scoring carries the structural scorer's weight table (spec §4.4).
type Scoring struct {
	ExactFilenameMatch      float64
	ExactFilenameMatchAux   float64
	SubstringMatch          float64
	SubstringMatchAux       float64
	WholeWordMatch          float64
	WholeWordMatchAux       float64
	DirectoryWeightUnit     float64
	ImplDirBonus            float64
	BusinessLogicMultiplier float64
	BoilerplateMultiplier   float64
	DepthPenaltyPerLevel    float64
	DepthPenaltyThreshold   int
	CanonicalBonus          float64
	TestPenalty             float64
	DocsPenalty             float64
	RecencyBoost            float64
	TopN                    int
	ExtensionWeights        map[string]float64
	// DirectoryWeights maps an intent category to a directory-prefix →
	// weight table (weights in [0,1]); multiple matches accumulate.
	DirectoryWeights map[string]map[string]float64
}

// Semantic controls the semantic index and its normalization helpers
// (spec §4.5, §4.2).
type Semantic struct {
	MinStemLength    int
	StemAlgorithm    string
	FuzzyEnabled     bool
	FuzzyThreshold   float64
	FuzzyAlgorithm   string
	IndexTTLHours    int
	LRUCacheSize     int
	RefreshBatchSize int
}

// Session controls the session manager's boost formula (spec §4.8).
type Session struct {
	ViewBoostPerView float64
	RecentQueryBoost float64
	MaxHistoryItems  int
}

type Performance struct {
	MaxGoroutines       int
	ParallelFileWorkers int
	StatConcurrency     int // bounded pool size for stat/read suspension points
	PrefetchConcurrency int
	ScoreBudgetMs       int // 500ms P99 budget from spec §1
}

// FeatureFlags toggles optional refinement stages.
type FeatureFlags struct {
	EnableSmartFilter    bool
	EnableImpactAnalysis bool
	EnableWatchMode      bool
}

// Load resolves configuration by merging a home-directory base config with
// a project-directory config, falling back to built-in defaults.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	kdlCfg, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}
	projectConfig = kdlCfg

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	return Default(searchDir), nil
}

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	cwd := root
	if cwd == "" || cwd == "." {
		if wd, err := os.Getwd(); err == nil {
			cwd = wd
		} else {
			cwd = "."
		}
	}

	cfg := &Config{
		Version: 1,
		Project: Project{Root: cwd},
		Enumerate: Enumerate{
			MaxFileCount:     50000,
			RespectGitignore: true,
			FollowSymlinks:   false,
			WalkerMaxDepth:   10,
			ScanTimeoutSec:   30,
			WatchMode:        false,
			WatchDebounceMs:  300,
		},
		Scoring: Scoring{
			ExactFilenameMatch:      DefaultExactFilenameMatch,
			ExactFilenameMatchAux:   DefaultExactFilenameMatchAux,
			SubstringMatch:          DefaultSubstringMatch,
			SubstringMatchAux:       DefaultSubstringMatchAux,
			WholeWordMatch:          DefaultWholeWordMatch,
			WholeWordMatchAux:       DefaultWholeWordMatchAux,
			DirectoryWeightUnit:     DefaultDirectoryWeightUnit,
			ImplDirBonus:            DefaultImplDirBonus,
			BusinessLogicMultiplier: DefaultBusinessLogicMultiplier,
			BoilerplateMultiplier:   DefaultBoilerplateMultiplier,
			DepthPenaltyPerLevel:    DefaultDepthPenaltyPerLevel,
			DepthPenaltyThreshold:   DefaultDepthPenaltyThreshold,
			CanonicalBonus:          DefaultCanonicalBonus,
			TestPenalty:             DefaultTestPenalty,
			DocsPenalty:             DefaultDocsPenalty,
			RecencyBoost:            DefaultRecencyBoost,
			TopN:                    DefaultTopN,
			ExtensionWeights:        defaultExtensionWeights(),
			DirectoryWeights:        defaultDirectoryWeights(),
		},
		Semantic: Semantic{
			MinStemLength:    3,
			StemAlgorithm:    "porter2",
			FuzzyEnabled:     true,
			FuzzyThreshold:   0.7,
			FuzzyAlgorithm:   "jaro-winkler",
			IndexTTLHours:    24,
			LRUCacheSize:     3,
			RefreshBatchSize: 50,
		},
		Session: Session{
			ViewBoostPerView: 10,
			RecentQueryBoost: 20,
			MaxHistoryItems:  50,
		},
		Performance: Performance{
			MaxGoroutines:       runtime.NumCPU(),
			ParallelFileWorkers: 0,
			StatConcurrency:     50,
			PrefetchConcurrency: 100,
			ScoreBudgetMs:       500,
		},
		FeatureFlags: FeatureFlags{
			EnableSmartFilter:    true,
			EnableImpactAnalysis: true,
			EnableWatchMode:      false,
		},
		Include: []string{},
		Exclude: defaultExclusions(),
	}

	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg
}

func defaultExtensionWeights() map[string]float64 {
	return map[string]float64{
		".ts": 1.0, ".tsx": 1.0,
		".js": 0.9, ".jsx": 0.9,
		".py": 1.0, ".go": 1.0, ".rs": 1.0,
		".md": 0.05, ".mdx": 0.05,
		".yml": 0.8, ".yaml": 0.8,
	}
}

// defaultDirectoryWeights seeds the category→{prefix→weight} table with the
// monorepo-friendly prefixes spec §4.4 calls out by name. Other categories
// start empty; the structural scorer treats an absent entry as weight 0.
func defaultDirectoryWeights() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"backend": {
			"packages/": 0.6,
			"apps/":     0.6,
			"features/": 0.5,
			"services/": 0.8,
			"api/":      0.7,
			"server/":   0.7,
		},
		"UI": {
			"components/": 0.8,
			"views/":      0.6,
			"pages/":      0.5,
		},
		"styling": {
			"styles/": 0.8,
			"theme/":  0.6,
		},
		"testing": {
			"test/":    0.7,
			"tests/":   0.7,
			"e2e/":     0.6,
			"__tests__/": 0.7,
		},
		"config": {
			"config/": 0.8,
			".":       0.3,
		},
	}
}

// mergeConfigs merges a base config with a project config; the project
// config wins, but base exclusions are folded in rather than discarded.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeSet := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeSet[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeSet[pattern] = true
		}
		merged.Exclude = make([]string, 0, len(excludeSet))
		for pattern := range excludeSet {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts appends language-specific build output
// directories detected from package manifests at the project root.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	if patterns := detector.DetectOutputDirectories(); len(patterns) > 0 {
		c.Exclude = append(c.Exclude, patterns...)
		c.Exclude = DeduplicatePatterns(c.Exclude)
	}
}

func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.*/**",

		"**/node_modules/**",
		"**/vendor/**",
		"**/bower_components/**",
		"**/jspm_packages/**",

		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/bin/**",
		"**/obj/**",
		"**/*.min.js",
		"**/*.min.css",
		"**/*.bundle.js",
		"**/*.chunk.js",
		"**/*.min.map",

		"**/*_test.go",
		"**/*.test.ts", "**/*.test.tsx", "**/*.test.js", "**/*.test.jsx",
		"**/*.spec.ts", "**/*.spec.tsx", "**/*.spec.js", "**/*.spec.jsx",
		"**/__tests__/**", "**/testdata/**", "**/fixtures/**",

		"**/*.woff", "**/*.woff2", "**/*.ttf", "**/*.eot", "**/*.otf",
		"**/*.mp4", "**/*.mp3", "**/*.wav", "**/*.avi", "**/*.mov",

		"**/__pycache__/**", "**/*.pyc",

		"**/Thumbs.db", "**/desktop.ini",

		"**/logs/**", "**/*.log",
	}
}
