// internal/driver/commands.go
package driver

import (
	"time"

	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/protocol"
	"github.com/openavctl/lexibridge/internal/state"
)

// Every command is a closure executed under the serializer: connect,
// exchange, optionally settle and re-query, disconnect, release.

// PowerOn sends the power toggle. The device exposes no discrete on,
// so the driver assumes ON optimistically, opens a stabilization
// window, and leaves confirmation to the poll scheduled after expiry.
// The caller is never blocked waiting for boot.
func (d *Driver) PowerOn() error {
	var err error
	d.withCycle(func() {
		now := time.Now()
		snap := d.snapshot()

		if !d.tr.Connect() || !d.tr.SendCommand(protocol.BuildKeypress(protocol.RC5PowerToggle)) {
			err = ErrCommandFailed
			return
		}

		snap.Power = state.PowerOn
		snap.Ready = false
		d.openWindow(d.cfg.PowerOnWindow, now)
		d.commit(snap)
		d.log.Info("power on issued, confirming after stabilization window")
	})
	d.observe("power_on", err)
	return err
}

// PowerOff sends the power toggle and commits standby immediately.
// No window opens on the way down; the next poll confirms.
func (d *Driver) PowerOff() error {
	var err error
	d.withCycle(func() {
		snap := d.snapshot()

		if !d.tr.Connect() || !d.tr.SendCommand(protocol.BuildKeypress(protocol.RC5PowerToggle)) {
			err = ErrCommandFailed
			return
		}

		d.clearWindow()
		d.toStandby(&snap)
		d.commit(snap)
	})
	d.observe("power_off", err)
	return err
}

// VolumeUp steps the volume and resynchronizes the cached absolute
// level: steps are relative, so the driver must learn where it landed.
func (d *Driver) VolumeUp() error {
	err := d.volumeStep(protocol.RC5VolumeUp)
	d.observe("volume_up", err)
	return err
}

// VolumeDown steps the volume down and resynchronizes.
func (d *Driver) VolumeDown() error {
	err := d.volumeStep(protocol.RC5VolumeDown)
	d.observe("volume_down", err)
	return err
}

func (d *Driver) volumeStep(key byte) error {
	var err error
	d.withCycle(func() {
		if !d.tr.Connect() || !d.tr.SendCommand(protocol.BuildKeypress(key)) {
			err = ErrCommandFailed
			return
		}

		time.Sleep(d.cfg.SettleDelay)

		if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdVolume)); len(payload) >= 1 {
			snap := d.snapshot()
			snap.Volume = int(payload[0])
			snap.LastUpdate = time.Now()
			d.commit(snap)
		}
	})
	return err
}

// SetVolume sets an absolute level on the external 0.0-1.0 scale.
func (d *Driver) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return ErrVolumeOutOfRange
	}
	return d.SetVolumeRaw(state.RawVolume(level))
}

// SetVolumeRaw sets an absolute level on the device's native 0-99
// scale. Out-of-domain values are rejected before any I/O.
func (d *Driver) SetVolumeRaw(volume int) error {
	if volume < 0 || volume > protocol.VolumeMax {
		d.observe("set_volume", ErrVolumeOutOfRange)
		return ErrVolumeOutOfRange
	}

	var err error
	d.withCycle(func() {
		if !d.tr.Connect() || !d.tr.SendCommand(protocol.BuildSetVolume(byte(volume))) {
			err = ErrCommandFailed
			return
		}

		snap := d.snapshot()
		snap.Volume = volume
		snap.LastUpdate = time.Now()
		d.commit(snap)
	})
	d.observe("set_volume", err)
	return err
}

// MuteOn mutes the primary zone.
func (d *Driver) MuteOn() error {
	err := d.muteKeypress(protocol.RC5MuteOn, true)
	d.observe("mute_on", err)
	return err
}

// MuteOff unmutes the primary zone.
func (d *Driver) MuteOff() error {
	err := d.muteKeypress(protocol.RC5MuteOff, false)
	d.observe("mute_off", err)
	return err
}

func (d *Driver) muteKeypress(key byte, muted bool) error {
	var err error
	d.withCycle(func() {
		if !d.tr.Connect() || !d.tr.SendCommand(protocol.BuildKeypress(key)) {
			err = ErrCommandFailed
			return
		}

		snap := d.snapshot()
		snap.Muted = muted
		d.commit(snap)
	})
	return err
}

// MuteToggle flips mute and re-queries to learn the resulting state,
// falling back to an optimistic flip if the query fails.
func (d *Driver) MuteToggle() error {
	var err error
	d.withCycle(func() {
		snap := d.snapshot()

		if !d.tr.Connect() || !d.tr.SendCommand(protocol.BuildKeypress(protocol.RC5MuteToggle)) {
			err = ErrCommandFailed
			return
		}

		time.Sleep(d.cfg.SettleDelay)

		if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdMute)); len(payload) >= 1 {
			snap.Muted = payload[0] == 0x00
		} else {
			snap.Muted = !snap.Muted
		}
		d.commit(snap)
	})
	d.observe("mute_toggle", err)
	return err
}

// SelectInput switches to the named source. The name may be a
// configured alias or a physical input name; anything else is
// rejected without touching the socket.
func (d *Driver) SelectInput(name string) error {
	physical := name
	if mapped, ok := d.aliasToPhysical[name]; ok {
		physical = mapped
	}
	key, ok := protocol.Inputs[physical]
	if !ok {
		d.observe("select_input", ErrUnknownInput)
		return ErrUnknownInput
	}

	var err error
	d.withCycle(func() {
		if !d.tr.Connect() || !d.tr.SendCommand(protocol.BuildKeypress(key)) {
			err = ErrCommandFailed
			return
		}

		// Give the receiver a moment to switch, then confirm. When the
		// re-query fails, fall back to the optimistically assumed
		// source rather than leaving a stale one.
		time.Sleep(d.cfg.SourceSettleDelay)

		snap := d.snapshot()
		if payload := d.tr.SendQuery(protocol.BuildQuery(protocol.CmdCurrentSource)); len(payload) >= 1 {
			snap.Source = d.displayName(protocol.SourceName(payload[0]))
			snap.LastUpdate = time.Now()
		} else {
			snap.Source = name
		}
		d.commit(snap)
	})
	d.observe("select_input", err)
	return err
}

func (d *Driver) observe(command string, err error) {
	if d.met != nil {
		d.met.Command(command, err == nil)
	}
	if err != nil {
		d.log.Warn("command failed", zap.String("command", command), zap.Error(err))
	}
}
