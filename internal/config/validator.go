package config

import (
	"errors"
	"fmt"
	"runtime"

	manticerrors "github.com/standardbeagle/mantic/internal/errors"
)

// Validator validates configuration and fills in smart defaults.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies smart defaults in place.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProject(&cfg.Project); err != nil {
		return manticerrors.NewConfigError("project", "", err)
	}
	if err := v.validateEnumerate(&cfg.Enumerate); err != nil {
		return manticerrors.NewConfigError("enumerate", "", err)
	}
	if err := v.validateScoring(&cfg.Scoring); err != nil {
		return manticerrors.NewConfigError("scoring", "", err)
	}
	if err := v.validatePerformance(&cfg.Performance); err != nil {
		return manticerrors.NewConfigError("performance", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProject(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateEnumerate(e *Enumerate) error {
	if e.MaxFileCount <= 0 {
		return fmt.Errorf("MaxFileCount must be positive, got %d", e.MaxFileCount)
	}
	if e.ScanTimeoutSec <= 0 {
		return fmt.Errorf("ScanTimeoutSec must be positive, got %d", e.ScanTimeoutSec)
	}
	return nil
}

func (v *Validator) validateScoring(s *Scoring) error {
	if s.TopN <= 0 {
		return fmt.Errorf("TopN must be positive, got %d", s.TopN)
	}
	if s.DepthPenaltyThreshold < 0 {
		return fmt.Errorf("DepthPenaltyThreshold cannot be negative, got %d", s.DepthPenaltyThreshold)
	}
	return nil
}

func (v *Validator) validatePerformance(p *Performance) error {
	if p.MaxGoroutines < 0 {
		return fmt.Errorf("MaxGoroutines cannot be negative, got %d", p.MaxGoroutines)
	}
	if p.ParallelFileWorkers < 0 {
		return fmt.Errorf("ParallelFileWorkers cannot be negative, got %d", p.ParallelFileWorkers)
	}
	if p.ScoreBudgetMs <= 0 {
		return fmt.Errorf("ScoreBudgetMs must be positive, got %d", p.ScoreBudgetMs)
	}
	return nil
}

// setSmartDefaults fills zero-valued fields that mean "auto-detect".
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Performance.MaxGoroutines == 0 {
		cfg.Performance.MaxGoroutines = max(1, runtime.NumCPU()-1)
	}
	if cfg.Performance.ParallelFileWorkers == 0 {
		cfg.Performance.ParallelFileWorkers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Performance.StatConcurrency == 0 {
		cfg.Performance.StatConcurrency = 50
	}
	if cfg.Performance.PrefetchConcurrency == 0 {
		cfg.Performance.PrefetchConcurrency = 100
	}
}

// ValidateConfig is a convenience wrapper around Validator.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
