// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/openavctl/lexibridge/internal/protocol"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Receiver.Host == "" {
		return fmt.Errorf("config: receiver host is required")
	}

	if cfg.Receiver.Port < 0 || cfg.Receiver.Port > 65535 {
		return fmt.Errorf("config: receiver port %d out of range", cfg.Receiver.Port)
	}

	for _, ms := range []struct {
		name  string
		value int
	}{
		{"connect_timeout_ms", cfg.Receiver.ConnectTimeoutMs},
		{"read_timeout_ms", cfg.Receiver.ReadTimeoutMs},
		{"probe_timeout_ms", cfg.Receiver.ProbeTimeoutMs},
		{"retry_interval_ms", cfg.Receiver.RetryIntervalMs},
		{"startup_interval_ms", cfg.Poll.StartupIntervalMs},
		{"on_interval_ms", cfg.Poll.OnIntervalMs},
		{"off_interval_ms", cfg.Poll.OffIntervalMs},
		{"min_spacing_ms", cfg.Poll.MinSpacingMs},
		{"power_on_window_ms", cfg.Poll.PowerOnWindowMs},
	} {
		if ms.value < 0 {
			return fmt.Errorf("config: %s must not be negative", ms.name)
		}
	}

	// ------------------------------------------------------------
	// INPUT ALIAS VALIDATION
	// ------------------------------------------------------------

	seenAlias := make(map[string]string)

	for _, in := range cfg.Inputs {
		if in.Physical == "" {
			return fmt.Errorf("config: input alias %q has no physical input", in.Alias)
		}

		if _, ok := protocol.Inputs[in.Physical]; !ok {
			return fmt.Errorf(
				"config: unknown physical input %q (known: %v)",
				in.Physical, protocol.InputNames(),
			)
		}

		if in.Alias == "" {
			continue
		}

		if prev, exists := seenAlias[in.Alias]; exists {
			return fmt.Errorf(
				"config: alias %q maps to both %q and %q",
				in.Alias, prev, in.Physical,
			)
		}
		seenAlias[in.Alias] = in.Physical
	}

	return nil
}
