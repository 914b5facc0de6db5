// SPDX-License-Identifier: MIT
package audio

import "math"

func (c *Capture) EnableGate() {
	c.gateEnabled = true
}

func (c *Capture) DisableGate() {
	c.gateEnabled = false
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (c *Capture) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	c.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GetGateThreshold returns the current noise gate threshold as a float64.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (c *Capture) GetGateThreshold() float64 {
	return float64(c.gateThreshold) / float64(math.MaxInt32)
}
