// SPDX-License-Identifier: EPL-2.0

package softengine

import "errors"

var (
	ErrNotConfigured = errors.New("offline rendering is not enabled")
	ErrRunning       = errors.New("engine is running")
	ErrFrameCount    = errors.New("invalid render frame count")
	ErrFormat        = errors.New("render format mismatch")
)
