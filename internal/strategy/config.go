package strategy

import "github.com/marketsift/sift/internal/screen"

// Config is the strategy file: everything about a screen that is
// policy rather than plumbing. Transport, credentials and logging
// stay in environment config; this file is hashed and stored with
// each run so results remain attributable to exact parameters.
type Config struct {
	Meta   Meta   `yaml:"meta" json:"meta"`
	Factor Factor `yaml:"factor" json:"factor"`
	Screen Screen `yaml:"screen" json:"screen"`
}

// Meta identifies the strategy.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Factor holds the factor model parameters.
type Factor struct {
	Weights screen.FactorWeights `yaml:"weights" json:"weights"`
}

// Screen holds run-shape defaults. CLI flags override them per run.
type Screen struct {
	Top     int `yaml:"top" json:"top"`
	Workers int `yaml:"workers" json:"workers"`
}

// Default returns the built-in strategy used when no file is given.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "sp500_screens",
			Version:    "1.0.0",
		},
		Factor: Factor{
			Weights: screen.DefaultFactorWeights(),
		},
		Screen: Screen{
			Top:     10,
			Workers: 4,
		},
	}
}
