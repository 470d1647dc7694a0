// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	// ErrInvalidFormat indicates a sample rate or channel count a session
	// cannot process.
	ErrInvalidFormat = errors.New("invalid processing format")

	ErrNilEngine         = errors.New("engine is nil")
	ErrInvalidFrameCount = errors.New("maximum frame count must be positive")

	// ErrRunning indicates a setting that can only change while stopped.
	ErrRunning = errors.New("session is running")

	// ErrEnableOffline wraps the engine's refusal to enter offline rendering.
	ErrEnableOffline = errors.New("cannot enable offline rendering")

	// ErrEngineStart wraps a failure to start the engine.
	ErrEngineStart = errors.New("cannot start engine")
)
