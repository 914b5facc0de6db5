// SPDX-License-Identifier: MIT
package transport

// Transport defines a generic interface for delivering rendered frames or
// beat events to an output. Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// BeatEvent is the beat notification fanned out alongside frames. JSON
// field names are part of the client protocol.
type BeatEvent struct {
	Timestamp  int64   `json:"timestamp"`
	BassEnergy float64 `json:"bassEnergy"`
	Mode       string  `json:"mode"`
}
