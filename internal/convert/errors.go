// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "errors"

// Sentinel errors for job failures. Match them with errors.Is; the wrapped
// message is what ends up in Outcome.Reason. A missing capability matches
// capability.ErrMissing.
var (
	ErrUnsupportedKind   = errors.New("unsupported conversion type")
	ErrDestinationLocked = errors.New("cannot overwrite")
	ErrInvalidOutput     = errors.New("invalid output path")
	ErrNoFont            = errors.New("no usable font found")
	ErrCancelled         = errors.New("conversion cancelled")
	ErrEmptyDocument     = errors.New("document has no pages")
)
