// internal/protocol/codes.go
package protocol

import (
	"fmt"
	"sort"
)

// Static code→name tables for the query responses. The device vendor
// does not document unused codes, so every lookup falls back to a
// tagged unknown value instead of failing.

// Inputs maps the physical input name to its RC5 key code.
var Inputs = map[string]byte{
	"BD":      0x62, // BluRay/DVD
	"CD":      0x76,
	"STB":     0x64, // Set top box
	"AV":      0x5E,
	"SAT":     0x1B,
	"PVR":     0x60,
	"GAME":    0x61,
	"VCR":     0x77,
	"AUX":     0x63,
	"RADIO":   0x5B,
	"NET":     0x5C,
	"USB":     0x5D,
	"DISPLAY": 0x3A, // TV audio return channel
}

// sourceCodes maps the CmdCurrentSource answer byte to the input name.
var sourceCodes = map[byte]string{
	0x01: "CD",
	0x02: "BD",
	0x03: "AV",
	0x04: "SAT",
	0x05: "PVR",
	0x06: "VCR",
	0x08: "AUX",
	0x09: "DISPLAY",
	0x0B: "RADIO",
	0x0E: "NET",
	0x0F: "USB",
	0x10: "STB",
	0x11: "GAME",
}

var decodeModes2ch = map[byte]string{
	0x01: "Stereo",
	0x02: "Dolby Surround",
	0x03: "DTS Neo:6 Cinema",
	0x04: "DTS Neo:6 Music",
	0x05: "DTS Virtual:X",
	0x06: "Direct",
}

var decodeModesMch = map[byte]string{
	0x01: "Stereo Downmix",
	0x02: "Multi-Channel",
	0x03: "Dolby Surround EX",
	0x04: "Dolby Atmos",
	0x05: "DTS:X",
	0x06: "DTS Neural:X",
}

var audioFormats = map[byte]string{
	0x00: "PCM",
	0x01: "Analogue Direct",
	0x02: "Dolby Digital",
	0x03: "Dolby Digital EX",
	0x04: "Dolby Surround",
	0x05: "DTS",
	0x06: "DTS 96/24",
	0x07: "DTS-ES Matrix",
	0x08: "DTS-ES Discrete",
	0x09: "Dolby Digital Plus",
	0x0A: "Dolby TrueHD",
	0x0B: "DTS-HD Master Audio",
	0x0C: "Dolby Atmos",
	0x0D: "DTS:X",
}

var sampleRates = map[byte]string{
	0x00: "32 kHz",
	0x01: "44.1 kHz",
	0x02: "48 kHz",
	0x03: "88.2 kHz",
	0x04: "96 kHz",
	0x05: "176.4 kHz",
	0x06: "192 kHz",
	0x07: "Unknown",
}

// unknownCode tags a payload value absent from its lookup table.
// Display-only; never an error.
func unknownCode(code byte) string {
	return fmt.Sprintf("UNKNOWN_0x%02X", code)
}

func lookup(table map[byte]string, code byte) string {
	if name, ok := table[code]; ok {
		return name
	}
	return unknownCode(code)
}

// SourceName decodes a CmdCurrentSource answer byte.
func SourceName(code byte) string { return lookup(sourceCodes, code) }

// DecodeMode2chName decodes a CmdDecode2ch answer byte, or "" when the
// code is not a known two-channel mode (the caller then falls through
// to the multi-channel table).
func DecodeMode2chName(code byte) string {
	return decodeModes2ch[code]
}

// DecodeModeMchName decodes a CmdDecodeMch answer byte.
func DecodeModeMchName(code byte) string { return lookup(decodeModesMch, code) }

// AudioFormatName decodes a CmdAudioFormat answer byte.
func AudioFormatName(code byte) string { return lookup(audioFormats, code) }

// SampleRateName decodes a CmdSampleRate answer byte.
func SampleRateName(code byte) string { return lookup(sampleRates, code) }

// InputNames returns the physical input names in stable order.
func InputNames() []string {
	names := make([]string, 0, len(Inputs))
	for name := range Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	// Every decodable source must be selectable: a code the device can
	// report but that has no RC5 key would make select-confirm cycles
	// unresolvable.
	for _, name := range sourceCodes {
		if _, ok := Inputs[name]; !ok {
			panic(fmt.Sprintf("protocol: source %q has no input key code", name))
		}
	}
}
