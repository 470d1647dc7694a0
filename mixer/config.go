// SPDX-License-Identifier: EPL-2.0

package mixer

import "github.com/sirupsen/logrus"

// DefaultMaximumFrameCount is the render block size requested when a Config
// leaves it unset.
const DefaultMaximumFrameCount = 1024

// MaxVolume is the largest per-source gain a session accepts.
const MaxVolume = 4.0

// Config describes a session.
type Config struct {
	// SampleRate and Channels form the processing format, fixed for the life
	// of the session.
	SampleRate float64
	Channels   int

	// MaximumFrameCount is the block size requested from the engine. Zero
	// means DefaultMaximumFrameCount.
	MaximumFrameCount int

	// Logger receives session events. Nil means the logrus standard logger.
	Logger *logrus.Entry
}

// DefaultConfig returns a configuration for the given format with the default
// block size.
func DefaultConfig(sampleRate float64, channels int) Config {
	return Config{
		SampleRate:        sampleRate,
		Channels:          channels,
		MaximumFrameCount: DefaultMaximumFrameCount,
	}
}
