// SPDX-License-Identifier: MIT
package udp

import (
	"fmt"

	applog "visualizer/internal/log"
	"visualizer/internal/transport"
)

// BeatPublisher delivers beat events as binary datagrams through a
// UDPSender. It implements transport.Transport so it can sit in the hub's
// fan-out next to the websocket stream; frame packets are silently skipped
// since full canvases do not fit a datagram, only beats go over UDP.
type BeatPublisher struct {
	sender      *UDPSender
	sequenceNum uint32
}

// NewBeatPublisher creates a publisher over the given sender.
func NewBeatPublisher(sender *UDPSender) (*BeatPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("BeatPublisher: UDP sender cannot be nil")
	}
	applog.Infof("BeatPublisher: Initialized")
	return &BeatPublisher{sender: sender}, nil
}

// Send encodes and transmits beat events; all other payloads are ignored.
func (p *BeatPublisher) Send(data any) error {
	event, ok := data.(transport.BeatEvent)
	if !ok {
		return nil
	}

	packet := transport.EncodeBeatEvent(event)
	if err := p.sender.Send(packet); err != nil {
		return err
	}

	p.sequenceNum++
	applog.Debugf("BeatPublisher: Sent beat %d (bass %.2f)", p.sequenceNum, event.BassEnergy)
	return nil
}

// Close closes the underlying sender.
func (p *BeatPublisher) Close() error {
	applog.Debugf("BeatPublisher: Close called, closing sender...")
	return p.sender.Close()
}

var _ transport.Transport = (*BeatPublisher)(nil)
