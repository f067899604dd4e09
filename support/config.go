package support

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Strategy names accepted by Config.Strategy.
const (
	StrategyBFS     = "bfs"
	StrategyDFS     = "dfs"
	StrategyDelayed = "delayed"
)

// Config describes the options of one analysis run.
type Config struct {
	// SolverTimeout is the per-query solver timeout in milliseconds.
	SolverTimeout uint `json:"solverTimeout"`

	// ExecutionTimeout bounds the whole run in seconds. Zero disables it.
	ExecutionTimeout int `json:"executionTimeout"`

	// CreateTimeout bounds the creation transaction in seconds. Zero disables it.
	CreateTimeout int `json:"createTimeout"`

	// TransactionCount is the number of message call layers after creation.
	TransactionCount int `json:"transactionCount"`

	// MaxDepth bounds the number of instructions a single path may execute.
	MaxDepth int `json:"maxDepth"`

	// Workers is the number of goroutines draining the work list.
	Workers int `json:"workers"`

	// Strategy selects the search strategy: bfs, dfs or delayed.
	Strategy string `json:"strategy"`

	// LoopBound limits how often a loop may be unrolled. Zero disables the bound.
	LoopBound int `json:"loopBound"`

	// PruningFactor is the share of states checked for feasibility before they are
	// enqueued, between 0 and 1.
	PruningFactor float64 `json:"pruningFactor"`

	// RequiresStatespace enables control-flow graph recording.
	RequiresStatespace bool `json:"requiresStatespace"`

	// ModelCacheSize is the number of recent models reused for quick satisfiability checks.
	ModelCacheSize int `json:"modelCacheSize"`

	// SignatureDBPath is the location of the function signature database.
	SignatureDBPath string `json:"signatureDBPath"`

	// CallDepthLimit bounds nested message calls.
	CallDepthLimit int `json:"callDepthLimit"`

	// LogLevel is one of trace, debug, info, warn or error.
	LogLevel string `json:"logLevel"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		SolverTimeout:      25000,
		ExecutionTimeout:   86400,
		CreateTimeout:      30,
		TransactionCount:   2,
		MaxDepth:           128,
		Workers:            1,
		Strategy:           StrategyBFS,
		LoopBound:          3,
		PruningFactor:      1,
		RequiresStatespace: true,
		ModelCacheSize:     100,
		SignatureDBPath:    "signatures.db",
		CallDepthLimit:     3,
		LogLevel:           "info",
	}
}

// ReadConfigFromFile reads a JSON configuration on top of the defaults.
func ReadConfigFromFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := DefaultConfig()
	if err = json.Unmarshal(b, cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	return cfg, nil
}

// WriteToFile writes the Config to a provided file path in a JSON-serialized format.
func (c *Config) WriteToFile(path string) error {
	b, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	if err = os.WriteFile(path, b, 0644); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Validate validates that the Config meets certain requirements.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.Errorf("worker count must be a positive number")
	}
	if c.MaxDepth <= 0 {
		return errors.Errorf("max depth must be a positive number")
	}
	if c.TransactionCount < 0 {
		return errors.Errorf("transaction count cannot be negative")
	}
	if c.LoopBound < 0 {
		return errors.Errorf("loop bound cannot be negative")
	}
	if c.PruningFactor < 0 || c.PruningFactor > 1 {
		return errors.Errorf("pruning factor must be between 0 and 1")
	}
	if c.ModelCacheSize <= 0 {
		return errors.Errorf("model cache size must be a positive number")
	}
	switch c.Strategy {
	case StrategyBFS, StrategyDFS, StrategyDelayed:
	default:
		return errors.Errorf("unknown search strategy %q", c.Strategy)
	}
	return nil
}
