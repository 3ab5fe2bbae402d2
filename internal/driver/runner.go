// internal/driver/runner.go
package driver

import (
	"context"
	"time"
)

// Run drives the adaptive poll schedule until ctx is done. One
// goroutine per driver. No overlap: every cycle queues on the same
// serializer the on-demand commands use.
func (d *Driver) Run(ctx context.Context) {
	// Converge immediately instead of waiting a full interval.
	d.Poll()

	timer := time.NewTimer(d.NextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.Poll()
			timer.Reset(d.NextInterval())
		}
	}
}
