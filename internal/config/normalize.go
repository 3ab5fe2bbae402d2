// internal/config/normalize.go
package config

import "github.com/openavctl/lexibridge/internal/protocol"

// Default poll tuning. Chosen for a device that tolerates few
// clients: fast convergence at startup, fresh status while on, low
// contention while off.
const (
	defaultStartupIntervalMs = 5000
	defaultOnIntervalMs      = 30000
	defaultOffIntervalMs     = 60000
	defaultStartupPolls      = 3
	defaultMinSpacingMs      = 500
	defaultPowerOnWindowMs   = 10000
	defaultRetryIntervalMs   = 5000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	r := &cfg.Receiver
	if r.Port == 0 {
		r.Port = protocol.DefaultPort
	}
	if r.ConnectTimeoutMs == 0 {
		r.ConnectTimeoutMs = int(protocol.DefaultConnectTimeout.Milliseconds())
	}
	if r.ReadTimeoutMs == 0 {
		r.ReadTimeoutMs = int(protocol.DefaultReadTimeout.Milliseconds())
	}
	if r.ProbeTimeoutMs == 0 {
		r.ProbeTimeoutMs = int(protocol.DefaultProbeTimeout.Milliseconds())
	}
	if r.RetryIntervalMs == 0 {
		r.RetryIntervalMs = defaultRetryIntervalMs
	}

	p := &cfg.Poll
	if p.StartupIntervalMs == 0 {
		p.StartupIntervalMs = defaultStartupIntervalMs
	}
	if p.OnIntervalMs == 0 {
		p.OnIntervalMs = defaultOnIntervalMs
	}
	if p.OffIntervalMs == 0 {
		p.OffIntervalMs = defaultOffIntervalMs
	}
	if p.StartupPolls == 0 {
		p.StartupPolls = defaultStartupPolls
	}
	if p.MinSpacingMs == 0 {
		p.MinSpacingMs = defaultMinSpacingMs
	}
	if p.PowerOnWindowMs == 0 {
		p.PowerOnWindowMs = defaultPowerOnWindowMs
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.HTTP.Enable && cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8085"
	}
}
