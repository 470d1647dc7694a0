// SPDX-License-Identifier: EPL-2.0

package audmix

import "errors"

var (
	ErrNilSession     = errors.New("nil session")
	ErrFormatMismatch = errors.New("input format does not match session")
	ErrDuplicateInput = errors.New("input already attached")
	ErrRenderFailed   = errors.New("render failed")
)
