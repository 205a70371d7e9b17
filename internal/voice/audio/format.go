// Package audio describes the wire audio formats relayed by the bridge.
// Payloads are never transcoded; the bridge only needs to know how much
// audio a payload carries.
package audio

import (
	"encoding/base64"
	"strings"
	"time"
)

// Format is a fixed-rate audio encoding.
type Format struct {
	Name           string
	SampleRate     int
	BytesPerSample int
}

// MuLaw8k is G.711 mu-law at 8kHz, the codec of telephony media streams.
var MuLaw8k = Format{Name: "g711_ulaw", SampleRate: 8000, BytesPerSample: 1}

// Duration returns the playback time of n bytes of audio in this format.
func (f Format) Duration(n int) time.Duration {
	if n <= 0 || f.SampleRate <= 0 || f.BytesPerSample <= 0 {
		return 0
	}
	samples := int64(n / f.BytesPerSample)
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate)
}

// PayloadDuration returns the playback time of a base64 encoded payload
// without decoding it.
func (f Format) PayloadDuration(payload string) time.Duration {
	return f.Duration(DecodedLen(payload))
}

// BytesFor returns how many bytes hold d of audio in this format.
func (f Format) BytesFor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d*time.Duration(f.SampleRate)/time.Second) * f.BytesPerSample
}

// DecodedLen returns the exact number of bytes a standard base64 string
// decodes to, accounting for padding.
func DecodedLen(payload string) int {
	payload = strings.TrimRight(payload, "\r\n")
	if payload == "" {
		return 0
	}
	n := base64.StdEncoding.DecodedLen(len(payload))
	if strings.HasSuffix(payload, "==") {
		return n - 2
	}
	if strings.HasSuffix(payload, "=") {
		return n - 1
	}
	// Unpadded input
	return base64.RawStdEncoding.DecodedLen(len(payload))
}

func Base64ToBytes(base64String string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64String)
}

func BytesToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
