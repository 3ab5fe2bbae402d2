// internal/driver/schedule.go
package driver

import (
	"time"

	"github.com/openavctl/lexibridge/internal/state"
)

// transitionWindow covers the device's physical relay-click and boot
// latency after a power change. While active, power polling is skipped
// in favor of the optimistic assumed value and ready is forced false.
type transitionWindow struct {
	began time.Time
	until time.Time
}

func (w transitionWindow) active(now time.Time) bool {
	return !w.until.IsZero() && now.Before(w.until)
}

// open starts a window of the given duration.
func (d *Driver) openWindow(duration time.Duration, now time.Time) {
	d.window = transitionWindow{began: now, until: now.Add(duration)}
}

func (d *Driver) clearWindow() {
	d.window = transitionWindow{}
}

// stabilized reports whether enough time has passed since the last
// power transition began for the device to be trusted.
func (d *Driver) stabilized(now time.Time) bool {
	if d.window.active(now) {
		return false
	}
	if d.window.began.IsZero() {
		return true
	}
	return now.Sub(d.window.began) >= d.cfg.PowerOnWindow
}

// confirmMargin delays the post-transition confirmation poll slightly
// past window expiry so the first real probe lands on a settled device.
const confirmMargin = time.Second

// NextInterval selects the next poll delay from the current derived
// state: fast while starting up, short while on, long while off. An
// active transition window pulls the next poll to just after expiry.
func (d *Driver) NextInterval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	var interval time.Duration
	switch {
	case d.pollCount < d.cfg.StartupPolls:
		interval = d.cfg.StartupInterval
	case d.snapshot().Power == state.PowerOn:
		interval = d.cfg.OnInterval
	default:
		interval = d.cfg.OffInterval
	}

	now := time.Now()
	if d.window.active(now) {
		if until := d.window.until.Sub(now) + confirmMargin; until < interval {
			interval = until
		}
	}
	return interval
}
