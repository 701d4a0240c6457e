package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate collects every invalid field into one multierr rather than
// failing on the first.
func (c AppConfig) Validate() error {
	var err error

	if c.Port <= 0 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port must be in (0,65535], got %d", c.Port))
	}
	if c.Stremio.MaxConcurrentPlugins < 2 || c.Stremio.MaxConcurrentPlugins > 30 {
		err = multierr.Append(err, fmt.Errorf("cheapSlots must be in [2,30], got %d", c.Stremio.MaxConcurrentPlugins))
	}
	if c.Stremio.MaxConcurrentPlaywright < 1 || c.Stremio.MaxConcurrentPlaywright > 10 {
		err = multierr.Append(err, fmt.Errorf("expensiveSlots must be in [1,10], got %d", c.Stremio.MaxConcurrentPlaywright))
	}
	if c.Stremio.ProbeConcurrency < 4 {
		err = multierr.Append(err, fmt.Errorf("probeConcurrency must be >= 4, got %d", c.Stremio.ProbeConcurrency))
	}
	if c.ValidationMaxConcurrent < 5 {
		err = multierr.Append(err, fmt.Errorf("validationMaxConcurrent must be >= 5, got %d", c.ValidationMaxConcurrent))
	}
	if c.PluginTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("pluginTimeout must be positive, got %s", c.PluginTimeout))
	}
	if c.TitleMatch.Threshold < 0 || c.TitleMatch.Threshold > 1 {
		err = multierr.Append(err, fmt.Errorf("titleMatchThreshold must be in [0,1], got %f", c.TitleMatch.Threshold))
	}
	if c.CircuitFailureThreshold < 1 {
		err = multierr.Append(err, fmt.Errorf("circuitFailureThreshold must be >= 1, got %d", c.CircuitFailureThreshold))
	}
	if c.MaxResultsPerPlugin < 1 {
		err = multierr.Append(err, fmt.Errorf("maxResultsPerPlugin must be >= 1, got %d", c.MaxResultsPerPlugin))
	}

	return err
}
