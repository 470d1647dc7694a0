// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrOnlyPCM16bitSupported is returned for any sample size other than 16
	// bits.
	ErrOnlyPCM16bitSupported = errors.New("only 16-bit PCM AIFF is supported")

	// ErrUnsupportedAiffLayout covers a missing COMM chunk, a channel count
	// outside 1..64 and a non-positive sample rate.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
