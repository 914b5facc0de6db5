// SPDX-License-Identifier: MIT
package transport

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visualizer/internal/analysis"
)

type captureTransport struct {
	packets []int // Lengths of binary sends.
	events  []BeatEvent
	closed  bool
}

func (c *captureTransport) Send(data any) error {
	switch payload := data.(type) {
	case []byte:
		c.packets = append(c.packets, len(payload))
	case BeatEvent:
		c.events = append(c.events, payload)
	}
	return nil
}

func (c *captureTransport) Close() error {
	c.closed = true
	return nil
}

func TestHubPublishesFrames(t *testing.T) {
	a := &captureTransport{}
	b := &captureTransport{}
	hub := NewHub(a, b)

	frame := testImage(16, 8)
	require.NoError(t, hub.Publish(frame, analysis.BeatState{}))
	require.NoError(t, hub.Publish(frame, analysis.BeatState{}))

	wantLen := frameHeaderSize + 16*8*4
	assert.Equal(t, []int{wantLen, wantLen}, a.packets)
	assert.Equal(t, []int{wantLen, wantLen}, b.packets)
	assert.Empty(t, a.events, "no beat, no event")
}

func TestHubEmitsBeatEvents(t *testing.T) {
	capture := &captureTransport{}
	hub := NewHub(capture)
	hub.SetModeName("circular")

	require.NoError(t, hub.Publish(testImage(8, 8), analysis.BeatState{BassEnergy: 0.6, Beat: true}))

	require.Len(t, capture.events, 1)
	assert.Equal(t, 0.6, capture.events[0].BassEnergy)
	assert.Equal(t, "circular", capture.events[0].Mode)
	assert.NotZero(t, capture.events[0].Timestamp)
}

func TestHubPublishRejectsBadFrame(t *testing.T) {
	hub := NewHub(&captureTransport{})
	err := hub.Publish(image.NewRGBA(image.Rect(0, 0, 0, 0)), analysis.BeatState{})
	assert.Error(t, err)
}

func TestHubCloseClosesAll(t *testing.T) {
	a := &captureTransport{}
	b := &captureTransport{}
	hub := NewHub(a, b)

	require.NoError(t, hub.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
