// Package contextbuilder assembles the final search result: the query
// echo, intent summary, ranked files with metadata, and the two advisory
// analyses — canonical-duplicate detection and entity-hallucination
// validation (spec §4.9).
package contextbuilder

import (
	"time"

	"github.com/standardbeagle/mantic/internal/types"
)

// IntentSummary is the trimmed intent block in the output schema.
type IntentSummary struct {
	Category   types.IntentCategory `json:"category"`
	SubCategory string              `json:"subCategory,omitempty"`
	Confidence float64              `json:"confidence"`
	Keywords   []string             `json:"keywords"`
}

// Metadata is the output schema's top-level metadata block.
type Metadata struct {
	ProjectType   string `json:"projectType,omitempty"`
	TechStack     string `json:"techStack,omitempty"`
	TotalScanned  int    `json:"totalScanned"`
	FilesReturned int    `json:"filesReturned"`
	TimeMs        int64  `json:"timeMs"`
	HasGitChanges bool   `json:"hasGitChanges"`
}

// Validation is the optional entity-hallucination summary.
type Validation struct {
	IsValid     bool                `json:"isValid"`
	EntityCount int                 `json:"entityCount"`
	FoundCount  int                 `json:"foundCount"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// Result is the complete, serialisable search response.
type Result struct {
	Query      string          `json:"query"`
	Intent     IntentSummary   `json:"intent"`
	Files      []types.ScoredFile `json:"files"`
	Metadata   Metadata        `json:"metadata"`
	GitState   string          `json:"gitState,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
	Validation *Validation     `json:"validation,omitempty"`
}

// Options configures a single Build call.
type Options struct {
	Root           string
	Query          string
	Intent         types.IntentAnalysis
	Files          []types.ScoredFile
	CandidatePaths []string // full enumeration, for canonical-duplicate + file-entity checks
	Index          *types.CacheIndex // optional, feeds entity-validation symbol lookups
	TotalScanned   int
	TechStack      string
	ProjectType    string
	GitState       string
	HasGitChanges  bool
	Elapsed        time.Duration
}

// Build assembles the final Result from a completed pipeline run.
func Build(opts Options) Result {
	files := opts.Files
	attachFileMetadata(opts.Root, files)
	attachConfidence(files)

	warnings := canonicalDuplicateWarnings(opts.CandidatePaths)
	entityWarnings, validation := validateEntities(opts.Intent.Entities, opts.CandidatePaths, opts.Index)
	warnings = append(warnings, entityWarnings...)

	return Result{
		Query: opts.Query,
		Intent: IntentSummary{
			Category:    opts.Intent.Category,
			SubCategory: opts.Intent.SubCategory,
			Confidence:  opts.Intent.Confidence,
			Keywords:    opts.Intent.Keywords,
		},
		Files: files,
		Metadata: Metadata{
			ProjectType:   opts.ProjectType,
			TechStack:     opts.TechStack,
			TotalScanned:  opts.TotalScanned,
			FilesReturned: len(files),
			TimeMs:        opts.Elapsed.Milliseconds(),
			HasGitChanges: opts.HasGitChanges,
		},
		GitState:   opts.GitState,
		Warnings:   warnings,
		Validation: validation,
	}
}
