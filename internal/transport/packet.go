// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"time"
)

/*
Frame Packet Structure (BigEndian)

+------------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description              |
|-------------------|----------------|--------------|--------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing |
| Timestamp         | int64          | 8            | Nanoseconds since epoch  |
| Width             | uint16         | 2            | Canvas width in pixels   |
| Height            | uint16         | 2            | Canvas height in pixels  |
| Pixels            | []byte         | W * H * 4    | RGBA rows, top to bottom |
+------------------------------------------------------------------------------+

Visual Layout:

|<-- 4 Bytes -->|<---- 8 Bytes ---->|<- 2 Bytes ->|<- 2 Bytes ->|<- W*H*4 Bytes ->|
+---------------+-------------------+-------------+-------------+-----------------+
|   Sequence    |     Timestamp     |    Width    |   Height    |     Pixels      |
|   (uint32)    |      (int64)      |   (uint16)  |   (uint16)  |     (RGBA)      |
+---------------+-------------------+-------------+-------------+-----------------+
*/

// frameHeaderSize is the fixed portion of a frame packet.
const frameHeaderSize = 4 + 8 + 2 + 2

// FrameEncoder packs rendered frames into the binary wire format. The
// internal buffer is reused across frames, so the returned slice is only
// valid until the next Encode call. Not safe for concurrent use.
type FrameEncoder struct {
	sequenceNum uint32
	buf         bytes.Buffer
	now         func() time.Time
}

// NewFrameEncoder returns an encoder with the sequence counter at zero.
func NewFrameEncoder() *FrameEncoder {
	return &FrameEncoder{now: time.Now}
}

// Encode packs one frame, incrementing the sequence number. The image's
// dimensions must fit the uint16 header fields.
func (e *FrameEncoder) Encode(frame *image.RGBA) ([]byte, error) {
	b := frame.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, fmt.Errorf("frame dimensions %dx%d outside packet range", width, height)
	}

	e.sequenceNum++
	e.buf.Reset()
	e.buf.Grow(frameHeaderSize + width*height*4)

	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint32(header[0:4], e.sequenceNum)
	binary.BigEndian.PutUint64(header[4:12], uint64(e.now().UnixNano()))
	binary.BigEndian.PutUint16(header[12:14], uint16(width))
	binary.BigEndian.PutUint16(header[14:16], uint16(height))
	e.buf.Write(header[:])

	// image.RGBA rows may carry stride padding; write row by row so the
	// payload is exactly W*H*4.
	rowLen := width * 4
	for y := 0; y < height; y++ {
		start := frame.PixOffset(b.Min.X, b.Min.Y+y)
		e.buf.Write(frame.Pix[start : start+rowLen])
	}

	return e.buf.Bytes(), nil
}

// Sequence returns the sequence number of the last encoded packet.
func (e *FrameEncoder) Sequence() uint32 {
	return e.sequenceNum
}

/*
Beat Packet Structure (BigEndian)

|<-- 8 Bytes -->|<---- 8 Bytes ---->|
+---------------+-------------------+
|   Timestamp   |    Bass Energy    |
|    (int64)    |     (float64)     |
+---------------+-------------------+
*/

// beatPacketSize is the length of an encoded beat event.
const beatPacketSize = 8 + 8

// EncodeBeatEvent packs a beat event for datagram delivery.
func EncodeBeatEvent(event BeatEvent) []byte {
	packet := make([]byte, beatPacketSize)
	binary.BigEndian.PutUint64(packet[0:8], uint64(event.Timestamp))
	binary.BigEndian.PutUint64(packet[8:16], math.Float64bits(event.BassEnergy))
	return packet
}
