// SPDX-License-Identifier: MIT
package transport

import (
	applog "visualizer/internal/log"
)

// LoggingTransport implements Transport by logging traffic summaries.
// Added to the fan-out in debug runs to watch traffic without a client.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs a short summary of the payload at debug level.
func (lt *LoggingTransport) Send(data any) error {
	switch payload := data.(type) {
	case []byte:
		applog.Debugf("LoggingTransport: %d byte packet", len(payload))
	case BeatEvent:
		applog.Debugf("LoggingTransport: beat (bass %.2f, mode %s)", payload.BassEnergy, payload.Mode)
	default:
		applog.Debugf("LoggingTransport: %T", data)
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
