// internal/driver/driver.go
package driver

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/metrics"
	"github.com/openavctl/lexibridge/internal/protocol"
	"github.com/openavctl/lexibridge/internal/state"
)

// Transport is the contract the driver drives. One write, one framed
// read per call, single-retry semantics behind SendCommand.
type Transport interface {
	Connect() bool
	Disconnect()
	SendCommand(frame []byte) bool
	SendQuery(frame []byte) []byte
	SendQueryTimeout(frame []byte, timeout time.Duration) []byte
}

// Errors surfaced to the entity glue. Command failures are reportable,
// never fatal.
var (
	ErrCommandFailed    = errors.New("driver: device did not accept command")
	ErrVolumeOutOfRange = errors.New("driver: volume outside 0-99 domain")
	ErrUnknownInput     = errors.New("driver: input not in source list")
)

// Config is the driver's runtime tuning. Zero values take defaults.
type Config struct {
	ProbeTimeout time.Duration // fast-fail power probe deadline

	SettleDelay       time.Duration // pause before re-query after volume/mute keypress
	SourceSettleDelay time.Duration // pause before re-query after input select

	PowerOnWindow time.Duration // boot transient, relay click + stabilization margin

	StartupInterval time.Duration
	OnInterval      time.Duration
	OffInterval     time.Duration
	StartupPolls    int

	// MinSpacing separates the end of one connect-operate-disconnect
	// cycle from the start of the next, across all callers.
	MinSpacing time.Duration

	// InputAliases maps a user-facing name to a physical input name.
	InputAliases map[string]string
}

func (c *Config) applyDefaults() {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = protocol.DefaultProbeTimeout
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 300 * time.Millisecond
	}
	if c.SourceSettleDelay <= 0 {
		c.SourceSettleDelay = time.Second
	}
	if c.PowerOnWindow <= 0 {
		c.PowerOnWindow = 10 * time.Second
	}
	if c.StartupInterval <= 0 {
		c.StartupInterval = 5 * time.Second
	}
	if c.OnInterval <= 0 {
		c.OnInterval = 30 * time.Second
	}
	if c.OffInterval <= 0 {
		c.OffInterval = 60 * time.Second
	}
	if c.StartupPolls <= 0 {
		c.StartupPolls = 3
	}
	if c.MinSpacing <= 0 {
		c.MinSpacing = 500 * time.Millisecond
	}
}

// Driver owns the device state and serializes every socket session.
//
// All socket work, scheduled polls and on-demand commands alike, runs
// under one mutex: the protocol is half-duplex and the device tolerates
// few clients, so cycles queue rather than interleave.
type Driver struct {
	mu sync.Mutex // the operation serializer

	tr  Transport
	cfg Config
	log *zap.Logger
	met *metrics.Set

	lastCycleEnd time.Time
	pollCount    int
	window       transitionWindow

	// snapMu guards only the published snapshot so readers never wait
	// behind a cycle in flight.
	snapMu sync.RWMutex
	snap   state.Snapshot

	aliasToPhysical map[string]string
	physicalToAlias map[string]string
}

// New creates a driver over an already-built transport.
func New(tr Transport, cfg Config, met *metrics.Set, log *zap.Logger) *Driver {
	cfg.applyDefaults()

	d := &Driver{
		tr:              tr,
		cfg:             cfg,
		log:             log,
		met:             met,
		snap:            state.New(),
		aliasToPhysical: make(map[string]string),
		physicalToAlias: make(map[string]string),
	}
	for alias, physical := range cfg.InputAliases {
		if alias == "" || physical == "" {
			continue
		}
		d.aliasToPhysical[alias] = physical
		d.physicalToAlias[physical] = alias
	}
	return d
}

// withCycle runs fn inside the single mutual-exclusion region,
// enforcing minimum spacing between cycles and disconnecting
// unconditionally afterwards. Cycles always run to completion.
func (d *Driver) withCycle(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if wait := d.cfg.MinSpacing - time.Since(d.lastCycleEnd); wait > 0 {
		time.Sleep(wait)
	}

	defer func() {
		d.tr.Disconnect()
		d.lastCycleEnd = time.Now()
	}()

	fn()
}

// snapshot returns a copy of the published state.
func (d *Driver) snapshot() state.Snapshot {
	d.snapMu.RLock()
	defer d.snapMu.RUnlock()
	return d.snap
}

// commit publishes a new snapshot. Only cycle code calls this, always
// from inside the serializer.
func (d *Driver) commit(s state.Snapshot) {
	d.snapMu.Lock()
	d.snap = s
	d.snapMu.Unlock()

	if d.met != nil {
		d.met.SetReady(s.Ready)
	}
}

// Snapshot returns the cached device state. Never blocks behind a
// cycle in flight.
func (d *Driver) Snapshot() state.Snapshot {
	return d.snapshot()
}

// IsReady reports the derived ready flag.
func (d *Driver) IsReady() bool {
	return d.snapshot().Ready
}

// Sources lists the selectable input names: the configured aliases
// when present, the physical names otherwise.
func (d *Driver) Sources() []string {
	if len(d.aliasToPhysical) > 0 {
		names := make([]string, 0, len(d.aliasToPhysical))
		for alias := range d.aliasToPhysical {
			names = append(names, alias)
		}
		sort.Strings(names)
		return names
	}
	return protocol.InputNames()
}

// displayName maps a physical source name to its configured alias.
func (d *Driver) displayName(physical string) string {
	if alias, ok := d.physicalToAlias[physical]; ok {
		return alias
	}
	return physical
}
