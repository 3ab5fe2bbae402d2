// internal/state/snapshot.go
package state

import (
	"math"
	"time"
)

// Power is the confirmed power state of the primary zone.
type Power string

const (
	PowerOn      Power = "on"
	PowerStandby Power = "standby"
)

// VolumeUnknown marks a volume that has never been read successfully.
const VolumeUnknown = -1

// Snapshot is the retained device state. It contains no logic beyond
// pure derivations and no memory of the past besides the cached
// last-known-good values.
//
// A field whose most recent query failed keeps its previous value;
// fields are never cleared by a transient I/O failure. The only
// exception is standby, which clears the audio-dependent fields.
type Snapshot struct {
	Power      Power  `json:"power"`
	Volume     int    `json:"volume"` // raw 0-99, VolumeUnknown until first read
	Muted      bool   `json:"muted"`
	Source     string `json:"source,omitempty"`
	DirectMode bool   `json:"direct_mode"`

	// Meaningful only while on; cleared on standby.
	AudioFormat string `json:"audio_format,omitempty"`
	DecodeMode  string `json:"decode_mode,omitempty"`
	SampleRate  string `json:"sample_rate,omitempty"`

	// Ready means confirmed on, past the boot-stabilization window,
	// with at least source and volume cached.
	Ready bool `json:"ready"`

	// LastUpdate is the last cycle in which any query succeeded.
	LastUpdate time.Time `json:"last_update,omitzero"`
}

// New returns the initial snapshot: standby, nothing cached.
func New() Snapshot {
	return Snapshot{
		Power:  PowerStandby,
		Volume: VolumeUnknown,
	}
}

// ClearAudio drops the fields that are meaningless while the device
// is in standby.
func (s *Snapshot) ClearAudio() {
	s.AudioFormat = ""
	s.DecodeMode = ""
	s.SampleRate = ""
	s.DirectMode = false
}

// HasVolume reports whether a volume value has ever been cached.
func (s Snapshot) HasVolume() bool {
	return s.Volume != VolumeUnknown
}

// VolumeLevel converts the raw 0-99 volume to the externally presented
// 0.0-1.0 scale, rounded to two decimals. Returns -1 when unknown.
func (s Snapshot) VolumeLevel() float64 {
	if !s.HasVolume() {
		return -1
	}
	return math.Round(float64(s.Volume)/99.0*100) / 100
}

// SecondsSinceUpdate returns the age of the last successful update,
// or -1 when no update has ever succeeded.
func (s Snapshot) SecondsSinceUpdate(now time.Time) float64 {
	if s.LastUpdate.IsZero() {
		return -1
	}
	return now.Sub(s.LastUpdate).Seconds()
}

// RawVolume converts an external 0.0-1.0 level to the device's 0-99
// scale without clamping; domain validation is the caller's guard.
func RawVolume(level float64) int {
	return int(math.Round(level * 99.0))
}
