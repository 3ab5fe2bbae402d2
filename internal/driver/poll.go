// internal/driver/poll.go
package driver

import (
	"time"

	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/metrics"
	"github.com/openavctl/lexibridge/internal/protocol"
	"github.com/openavctl/lexibridge/internal/state"
)

// Poll performs one scheduled status cycle under the serializer.
func (d *Driver) Poll() {
	d.withCycle(d.pollOnce)
}

// pollOnce is one connect-query-disconnect pass. Every query failure
// degrades to "keep the cached value"; nothing here is fatal.
func (d *Driver) pollOnce() {
	d.pollCount++
	now := time.Now()
	snap := d.snapshot()

	// 1. Connect. An unreachable device is off; hold time stays near
	// zero because withCycle disconnects on the way out.
	if !d.tr.Connect() {
		d.toStandby(&snap)
		d.commit(snap)
		d.count(metrics.OutcomeUnreachable)
		return
	}

	// 2. Power. During a transition window the device is assumed on;
	// windows only open on power-up. Otherwise probe with the short
	// deadline: a miss means unreachable/off, not an error.
	powerOn := true
	if !d.window.active(now) {
		payload := d.tr.SendQueryTimeout(protocol.BuildQuery(protocol.CmdPower), d.cfg.ProbeTimeout)
		if payload == nil {
			d.toStandby(&snap)
			d.commit(snap)
			d.count(metrics.OutcomeUnreachable)
			return
		}
		powerOn = len(payload) > 0 && payload[0] == 0x01
		snap.LastUpdate = now
	}

	// 3. Confirmed standby short-circuits the expensive query set.
	if !powerOn {
		d.toStandby(&snap)
		d.commit(snap)
		d.count(metrics.OutcomeStandby)
		return
	}

	// 4. Confirmed on. A fresh off→on observation gets its own
	// stabilization window: the relay has clicked but the DSP is
	// still booting.
	if snap.Power != state.PowerOn {
		d.log.Info("device powered on, opening stabilization window")
		d.openWindow(d.cfg.PowerOnWindow, now)
	}
	snap.Power = state.PowerOn

	// 5. Full query set. Per-field: update on success, keep the cache
	// on failure.
	updated := d.queryStatus(&snap)

	// 6. Ready needs a confirmed-on, stabilized device with at least
	// source and volume cached.
	snap.Ready = d.stabilized(now) && snap.HasVolume() && snap.Source != ""

	// 7. Staleness bookkeeping.
	if updated {
		snap.LastUpdate = now
	}

	d.commit(snap)
	d.count(metrics.OutcomeOn)
}

// queryStatus runs the on-state query set, merging each result into
// the snapshot. Returns whether any query succeeded.
func (d *Driver) queryStatus(snap *state.Snapshot) bool {
	updated := false

	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdVolume)); len(payload) >= 1 {
		snap.Volume = int(payload[0])
		updated = true
	}

	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdMute)); len(payload) >= 1 {
		snap.Muted = payload[0] == 0x00
		updated = true
	}

	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdCurrentSource)); len(payload) >= 1 {
		snap.Source = d.displayName(protocol.SourceName(payload[0]))
		updated = true
	}

	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdAudioFormat)); len(payload) >= 1 {
		snap.AudioFormat = protocol.AudioFormatName(payload[0])
		updated = true
	}

	if mode := d.queryDecodeMode(); mode != "" {
		snap.DecodeMode = mode
		updated = true
	}

	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdSampleRate)); len(payload) >= 1 {
		snap.SampleRate = protocol.SampleRateName(payload[0])
		updated = true
	}

	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdDirectMode)); len(payload) >= 1 {
		snap.DirectMode = payload[0] == 0x01
		updated = true
	}

	return updated
}

// queryDecodeMode prefers the two-channel table and falls through to
// the multi-channel variant, which always answers (unknown-tagged).
func (d *Driver) queryDecodeMode() string {
	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdDecode2ch)); len(payload) >= 1 {
		if mode := protocol.DecodeMode2chName(payload[0]); mode != "" {
			return mode
		}
	}
	if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdDecodeMch)); len(payload) >= 1 {
		return protocol.DecodeModeMchName(payload[0])
	}
	return ""
}

// toStandby applies the one legitimate clearing transition: audio
// fields mean nothing while the device is off. Volume and source stay
// cached for display.
func (d *Driver) toStandby(snap *state.Snapshot) {
	if snap.Power == state.PowerOn {
		d.log.Info("device entered standby")
	}
	snap.Power = state.PowerStandby
	snap.Ready = false
	snap.ClearAudio()
}

func (d *Driver) count(outcome string) {
	if d.met != nil {
		d.met.PollCycles.WithLabelValues(outcome).Inc()
	}
	d.log.Debug("poll cycle complete", zap.String("outcome", outcome), zap.Int("cycle", d.pollCount))
}
