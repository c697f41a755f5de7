package stitch

import (
	"fmt"

	"github.com/banshee-data/trackstitch/internal/config"
	"github.com/banshee-data/trackstitch/internal/matcher"
)

// Params is the validated, immutable stitching configuration.
type Params struct {
	Enabled         bool
	PercentMatchReq float64
	NewShotLength   uint // always >= 1
	MaxSearchLength uint
	SearchWorkers   int // always >= 1
}

// DefaultParams returns the parameters of an empty configuration.
func DefaultParams() Params {
	p, _ := NewParams(config.DefaultStitchConfig())
	return p
}

// CheckConfig validates cfg, including the nested matcher block.
func CheckConfig(cfg *config.StitchConfig) error {
	if cfg == nil {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := matcher.CheckConfig(cfg.GetFeatureMatcher()); err != nil {
		return fmt.Errorf("feature_matcher: %w", err)
	}
	return nil
}

// NewParams validates cfg and resolves it into Params. A nil cfg yields
// the defaults.
func NewParams(cfg *config.StitchConfig) (Params, error) {
	if cfg == nil {
		cfg = &config.StitchConfig{}
	}
	if err := CheckConfig(cfg); err != nil {
		return Params{}, err
	}
	return Params{
		Enabled:         cfg.GetEnabled(),
		PercentMatchReq: cfg.GetPercentMatchReq(),
		NewShotLength:   cfg.GetNewShotLength(),
		MaxSearchLength: cfg.GetMaxSearchLength(),
		SearchWorkers:   cfg.GetSearchWorkers(),
	}, nil
}
