package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a .mantic.kdl file at
// projectRoot. Returns (nil, nil) when no file is present.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".mantic.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("read .mantic.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root != "" {
		if filepath.IsAbs(cfg.Project.Root) {
			cfg.Project.Root = filepath.Clean(cfg.Project.Root)
		} else {
			cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
		}
	} else if absRoot, err := filepath.Abs(projectRoot); err == nil {
		cfg.Project.Root = absRoot
	} else {
		cfg.Project.Root = projectRoot
	}

	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	defaultRoot, err := os.Getwd()
	if err != nil || defaultRoot == "" {
		defaultRoot = "."
	}

	cfg := Default(defaultRoot)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse .mantic.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "enumerate":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_count":
					if v, ok := firstIntArg(cn); ok {
						cfg.Enumerate.MaxFileCount = v
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Enumerate.RespectGitignore = b
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Enumerate.FollowSymlinks = b
					}
				case "walker_max_depth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Enumerate.WalkerMaxDepth = v
					}
				case "scan_timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Enumerate.ScanTimeoutSec = v
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Enumerate.WatchMode = b
						cfg.FeatureFlags.EnableWatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Enumerate.WatchDebounceMs = v
					}
				}
			}
		case "scoring":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "exact_filename_match":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.ExactFilenameMatch = v
					}
				case "substring_match":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.SubstringMatch = v
					}
				case "business_logic_multiplier":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.BusinessLogicMultiplier = v
					}
				case "boilerplate_multiplier":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.BoilerplateMultiplier = v
					}
				case "canonical_bonus":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.CanonicalBonus = v
					}
				case "test_penalty":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.TestPenalty = v
					}
				case "docs_penalty":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.DocsPenalty = v
					}
				case "recency_boost":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Scoring.RecencyBoost = v
					}
				case "top_n":
					if v, ok := firstIntArg(cn); ok {
						cfg.Scoring.TopN = v
					}
				}
			}
		case "semantic":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "min_stem_length":
					if v, ok := firstIntArg(cn); ok {
						cfg.Semantic.MinStemLength = v
					}
				case "fuzzy_enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Semantic.FuzzyEnabled = b
					}
				case "fuzzy_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Semantic.FuzzyThreshold = v
					}
				case "index_ttl_hours":
					if v, ok := firstIntArg(cn); ok {
						cfg.Semantic.IndexTTLHours = v
					}
				case "lru_cache_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Semantic.LRUCacheSize = v
					}
				case "refresh_batch_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Semantic.RefreshBatchSize = v
					}
				}
			}
		case "session":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "view_boost_per_view":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Session.ViewBoostPerView = v
					}
				case "recent_query_boost":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Session.RecentQueryBoost = v
					}
				case "max_history_items":
					if v, ok := firstIntArg(cn); ok {
						cfg.Session.MaxHistoryItems = v
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_goroutines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.MaxGoroutines = v
					}
				case "parallel_file_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ParallelFileWorkers = v
					}
				case "stat_concurrency":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.StatConcurrency = v
					}
				case "prefetch_concurrency":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.PrefetchConcurrency = v
					}
				case "score_budget_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ScoreBudgetMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid numeric value for %q in .mantic.kdl, got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
