// Package types holds the shared data model for the search pipeline:
// candidate files, intent analysis, scored files, the persisted cache
// index, sessions, and the dependency graph. Every path held in these
// types is repository-relative and uses forward-slash separators.
package types

import "time"

// ClassTag is the result of classifying a file path.
type ClassTag string

const (
	ClassGenerated ClassTag = "generated"
	ClassTest      ClassTag = "test"
	ClassDocs      ClassTag = "docs"
	ClassConfig    ClassTag = "config"
	ClassCode      ClassTag = "code"
	ClassOther     ClassTag = "other"
)

// FileCandidate is a single enumerated file, with an optional cached
// classification and stat snapshot.
type FileCandidate struct {
	Path         string    `json:"path"`
	Class        ClassTag  `json:"class,omitempty"`
	Size         int64     `json:"size,omitempty"`
	ModTime      time.Time `json:"modTime,omitempty"`
	StatObserved bool      `json:"-"`
}

// IntentCategory is the closed set of query-intent categories.
type IntentCategory string

const (
	IntentUI          IntentCategory = "UI"
	IntentAuth        IntentCategory = "auth"
	IntentStyling     IntentCategory = "styling"
	IntentPerformance IntentCategory = "performance"
	IntentBackend     IntentCategory = "backend"
	IntentTesting     IntentCategory = "testing"
	IntentConfig      IntentCategory = "config"
	IntentGeneral     IntentCategory = "general"
)

// Entities partitions entity-extraction results into buckets used for
// hallucination detection (see contextbuilder.ValidateEntities).
type Entities struct {
	Files      []string `json:"files,omitempty"`
	Functions  []string `json:"functions,omitempty"`
	Classes    []string `json:"classes,omitempty"`
	Components []string `json:"components,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// IntentAnalysis is the output of the intent analyser.
type IntentAnalysis struct {
	Category    IntentCategory `json:"category"`
	SubCategory string         `json:"subCategory,omitempty"`
	Keywords    []string       `json:"keywords"`
	Confidence  float64        `json:"confidence"`
	Entities    Entities       `json:"entities"`
}

// MatchedLine is an excerpt produced by exact line detection.
type MatchedLine struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Keyword string `json:"matchedKeyword"`
}

// FileMetadata is the optional metadata block attached to a ScoredFile.
type FileMetadata struct {
	Bytes        int64     `json:"bytes"`
	LineEstimate int       `json:"lineEstimate"`
	TokenEstimate int      `json:"tokenEstimate"`
	LastModified time.Time `json:"lastModified"`
	Created      time.Time `json:"created,omitempty"`
	Confidence   float64   `json:"confidence"`
}

// Impact is the optional blast-radius block attached to a ScoredFile.
type Impact struct {
	DirectDependents   []string `json:"directDependents"`
	IndirectDependents []string `json:"indirectDependents"`
	RelatedTests       []string `json:"relatedTests"`
	RelatedConfig      []string `json:"relatedConfig"`
	BlastRadiusScore   int      `json:"blastRadiusScore"`
	BlastRadiusBucket  string   `json:"blastRadiusBucket"`
	Warnings           []string `json:"warnings,omitempty"`
}

// ScoredFile is a single ranked result.
type ScoredFile struct {
	Path          string        `json:"path"`
	Score         float64       `json:"relevanceScore"`
	Reasons       []string      `json:"matchReasons"`
	FileType      ClassTag      `json:"fileType,omitempty"`
	IsImported    bool          `json:"isImported"`
	IsExported    bool          `json:"isExported"`
	MatchedLines  []MatchedLine `json:"excerpts,omitempty"`
	Metadata      *FileMetadata `json:"metadata,omitempty"`
	Impact        *Impact       `json:"impact,omitempty"`
}

// ImportEntry records one extracted import statement.
type ImportEntry struct {
	Source    string   `json:"source"`
	Names     []string `json:"names,omitempty"`
	IsDefault bool      `json:"isDefault,omitempty"`
	IsDynamic bool      `json:"isDynamic,omitempty"`
	Line      int       `json:"line,omitempty"`
}

// ExportEntry records one extracted export.
type ExportEntry struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // function, class, const, type, interface, default, variable
	Line    int    `json:"line,omitempty"`
}

// FunctionEntry records one extracted function/method.
type FunctionEntry struct {
	Name     string `json:"name"`
	Async    bool   `json:"async,omitempty"`
	Exported bool   `json:"exported,omitempty"`
}

// FileEntry is the persisted, per-path record in a CacheIndex.
type FileEntry struct {
	Path       string          `json:"path"`
	ModTime    time.Time       `json:"modTime"`
	Size       int64           `json:"size"`
	ParsedAt   time.Time       `json:"parsedAt"`
	Language   string          `json:"language,omitempty"`
	Exports    []ExportEntry   `json:"exports,omitempty"`
	Imports    []ImportEntry   `json:"imports,omitempty"`
	Components []string        `json:"components,omitempty"`
	Keywords   []string        `json:"keywords,omitempty"`
	Functions  []FunctionEntry `json:"functions,omitempty"`
	Classes    []string        `json:"classes,omitempty"`
	Types      []string        `json:"types,omitempty"`
	ParseError string          `json:"parseError,omitempty"`
}

// ProjectMetadata records the best-effort project type and capabilities
// detected during a refresh.
type ProjectMetadata struct {
	Type         string   `json:"type,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// CacheIndex is the persisted, per-repository semantic index.
type CacheIndex struct {
	Version     string                `json:"version"`
	LastScan    time.Time             `json:"lastScan"`
	ProjectRoot string                `json:"projectRoot"`
	TechStack   string                `json:"techStack,omitempty"`
	TotalFiles  int                   `json:"totalFiles"`
	Files       map[string]*FileEntry `json:"files"`
	Project     *ProjectMetadata      `json:"project,omitempty"`
}

// SessionStatus is the lifecycle state of a Session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// SessionMeta is the header portion of a persisted Session document.
type SessionMeta struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Created    time.Time      `json:"created"`
	LastActive time.Time      `json:"lastActive"`
	QueryCount int            `json:"queryCount"`
	Intent     IntentCategory `json:"intent,omitempty"`
	Status     SessionStatus  `json:"status"`
}

// FileView tracks how a session has interacted with a single path.
type FileView struct {
	ViewCount      int       `json:"viewCount"`
	LastViewed     time.Time `json:"lastViewed"`
	RelevanceScore float64   `json:"relevanceScore"`
	BlastRadius    string    `json:"blastRadius,omitempty"`
	Notes          []string  `json:"notes,omitempty"`
}

// QueryRecord is one entry in a session's query history.
type QueryRecord struct {
	Query         string    `json:"query"`
	Timestamp     time.Time `json:"timestamp"`
	FilesReturned []string  `json:"filesReturned"`
}

// Session is the full persisted per-session document.
type Session struct {
	Meta    SessionMeta          `json:"meta"`
	Files   map[string]*FileView `json:"files"`
	History []QueryRecord        `json:"history"`
	Insights []string            `json:"insights,omitempty"`
}

// BoostCandidate is emitted by the session manager for the structural
// scorer to fold into its session-boost signal.
type BoostCandidate struct {
	Path        string  `json:"path"`
	BoostFactor float64 `json:"boostFactor"`
	Reason      string  `json:"reason"`
}

// FileNode is a single node of the dependency graph.
type FileNode struct {
	Imports    []string `json:"imports"`
	Exports    []string `json:"exports"`
	Dependents []string `json:"dependents"`
}

// DependencyGraph is the ephemeral, per-query import graph.
type DependencyGraph struct {
	Nodes   map[string]*FileNode  `json:"nodes"`
	Reverse map[string]map[string]bool `json:"-"`
}

// NewDependencyGraph returns an empty graph ready for population.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes:   make(map[string]*FileNode),
		Reverse: make(map[string]map[string]bool),
	}
}
