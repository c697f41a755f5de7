package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Matcher engine names accepted in feature_matcher.type.
const (
	MatcherHungarian = "hungarian"
	MatcherNearest   = "nearest"
)

// StitchConfig is the on-disk configuration for bad-frame stitching.
// Omitted fields fall back to the defaults returned by the Get* methods.
type StitchConfig struct {
	Enabled         *bool    `json:"bf_detection_enabled,omitempty"`
	PercentMatchReq *float64 `json:"bf_detection_percent_match_req,omitempty"`
	NewShotLength   *uint    `json:"bf_detection_new_shot_length,omitempty"`
	MaxSearchLength *uint    `json:"bf_detection_max_search_length,omitempty"`

	// Number of candidate frames matched concurrently during the backward search.
	SearchWorkers *int `json:"search_workers,omitempty"`

	FeatureMatcher *MatcherConfig `json:"feature_matcher,omitempty"`
}

// MatcherConfig configures the feature matching engine.
type MatcherConfig struct {
	Type        *string  `json:"type,omitempty"`
	MaxDistance *float64 `json:"max_distance,omitempty"` // descriptor L2 gate, 0 disables
	Ratio       *float64 `json:"ratio,omitempty"`        // nearest/second-nearest ratio test, 0 disables
	CrossCheck  *bool    `json:"cross_check,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrUint(v uint) *uint          { return &v }

// DefaultStitchConfig returns a config with every field set to its default.
func DefaultStitchConfig() *StitchConfig {
	return &StitchConfig{
		Enabled:         ptrBool(true),
		PercentMatchReq: ptrFloat64(0.2),
		NewShotLength:   ptrUint(2),
		MaxSearchLength: ptrUint(5),
		SearchWorkers:   ptrInt(1),
		FeatureMatcher:  DefaultMatcherConfig(),
	}
}

// DefaultMatcherConfig returns the default matcher block.
func DefaultMatcherConfig() *MatcherConfig {
	return &MatcherConfig{
		Type:        ptrString(MatcherHungarian),
		MaxDistance: ptrFloat64(0.7),
		Ratio:       ptrFloat64(0),
		CrossCheck:  ptrBool(true),
	}
}

// LoadStitchConfig loads a StitchConfig from a JSON file and validates it.
func LoadStitchConfig(path string) (*StitchConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseStitchConfig(data)
}

// ParseStitchConfig decodes and validates a JSON config document.
func ParseStitchConfig(data []byte) (*StitchConfig, error) {
	cfg := &StitchConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that can be checked without the matcher
// registry. The matcher type itself is checked by the matcher package.
func (c *StitchConfig) Validate() error {
	if c.PercentMatchReq != nil {
		v := *c.PercentMatchReq
		if math.IsNaN(v) || math.Abs(v) > 1.0 {
			return fmt.Errorf("%w: bf_detection_percent_match_req must be between -1.0 and 1.0, got %f", ErrInvalidConfig, v)
		}
	}
	if c.SearchWorkers != nil && *c.SearchWorkers < 0 {
		return fmt.Errorf("%w: search_workers must be non-negative, got %d", ErrInvalidConfig, *c.SearchWorkers)
	}
	if c.FeatureMatcher != nil {
		if err := c.FeatureMatcher.Validate(); err != nil {
			return fmt.Errorf("feature_matcher: %w", err)
		}
	}
	return nil
}

// Validate checks the numeric ranges of the matcher block.
func (m *MatcherConfig) Validate() error {
	if m.MaxDistance != nil && (*m.MaxDistance < 0 || math.IsNaN(*m.MaxDistance)) {
		return fmt.Errorf("%w: max_distance must be non-negative, got %f", ErrInvalidConfig, *m.MaxDistance)
	}
	if m.Ratio != nil && (*m.Ratio < 0 || *m.Ratio > 1) {
		return fmt.Errorf("%w: ratio must be between 0 and 1, got %f", ErrInvalidConfig, *m.Ratio)
	}
	return nil
}

// GetEnabled returns bf_detection_enabled or the default.
func (c *StitchConfig) GetEnabled() bool {
	if c.Enabled == nil {
		return true // default
	}
	return *c.Enabled
}

// GetPercentMatchReq returns bf_detection_percent_match_req or the default.
func (c *StitchConfig) GetPercentMatchReq() float64 {
	if c.PercentMatchReq == nil {
		return 0.2 // default
	}
	return *c.PercentMatchReq
}

// GetNewShotLength returns bf_detection_new_shot_length, coerced to at least 1.
func (c *StitchConfig) GetNewShotLength() uint {
	if c.NewShotLength == nil {
		return 2 // default
	}
	if *c.NewShotLength == 0 {
		return 1
	}
	return *c.NewShotLength
}

// GetMaxSearchLength returns bf_detection_max_search_length or the default.
func (c *StitchConfig) GetMaxSearchLength() uint {
	if c.MaxSearchLength == nil {
		return 5 // default
	}
	return *c.MaxSearchLength
}

// GetSearchWorkers returns search_workers, treating 0 as 1.
func (c *StitchConfig) GetSearchWorkers() int {
	if c.SearchWorkers == nil || *c.SearchWorkers < 1 {
		return 1
	}
	return *c.SearchWorkers
}

// GetFeatureMatcher returns the matcher block, never nil.
func (c *StitchConfig) GetFeatureMatcher() *MatcherConfig {
	if c.FeatureMatcher == nil {
		return &MatcherConfig{}
	}
	return c.FeatureMatcher
}

// GetType returns the matcher engine name or the default.
func (m *MatcherConfig) GetType() string {
	if m.Type == nil || *m.Type == "" {
		return MatcherHungarian
	}
	return *m.Type
}

// GetMaxDistance returns the descriptor distance gate or the default.
func (m *MatcherConfig) GetMaxDistance() float64 {
	if m.MaxDistance == nil {
		return 0.7 // default
	}
	return *m.MaxDistance
}

// GetRatio returns the ratio-test threshold; 0 disables the test.
func (m *MatcherConfig) GetRatio() float64 {
	if m.Ratio == nil {
		return 0
	}
	return *m.Ratio
}

// GetCrossCheck returns cross_check or the default.
func (m *MatcherConfig) GetCrossCheck() bool {
	if m.CrossCheck == nil {
		return true // default
	}
	return *m.CrossCheck
}
