// SPDX-License-Identifier: MIT
package transport

import (
	"image"
	"sync/atomic"
	"time"

	"visualizer/internal/analysis"
	applog "visualizer/internal/log"
)

// Hub fans rendered output out to a set of transports. It is the render
// loop's sink: every frame is packed once into the binary wire format and
// broadcast, and ticks that land on a beat additionally emit a BeatEvent.
type Hub struct {
	transports []Transport
	encoder    *FrameEncoder
	modeName   atomic.Value // string, stamped onto beat events.
}

// NewHub creates a hub broadcasting to the given transports.
func NewHub(transports ...Transport) *Hub {
	h := &Hub{
		transports: transports,
		encoder:    NewFrameEncoder(),
	}
	h.modeName.Store("")
	return h
}

// SetModeName records the active render mode for beat event metadata.
// Safe to call from the UI goroutine while the loop publishes.
func (h *Hub) SetModeName(name string) {
	h.modeName.Store(name)
}

// Publish packs the frame and broadcasts it, then broadcasts a beat event
// if this tick detected one. Transport errors are logged, not propagated;
// one slow output must not stall the others or the render loop.
func (h *Hub) Publish(frame *image.RGBA, beat analysis.BeatState) error {
	packet, err := h.encoder.Encode(frame)
	if err != nil {
		return err
	}

	for _, t := range h.transports {
		if err := t.Send(packet); err != nil {
			applog.Debugf("Hub: Frame send failed: %v", err)
		}
	}

	if beat.Beat {
		event := BeatEvent{
			Timestamp:  time.Now().UnixNano(),
			BassEnergy: beat.BassEnergy,
			Mode:       h.modeName.Load().(string),
		}
		for _, t := range h.transports {
			if err := t.Send(event); err != nil {
				applog.Debugf("Hub: Beat send failed: %v", err)
			}
		}
	}
	return nil
}

// Close closes every transport, returning the first error encountered.
func (h *Hub) Close() error {
	var firstErr error
	for _, t := range h.transports {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
