package v1

import "errors"

var (
	// ErrNoFrameId happens when the decoded frame has no id.
	ErrNoFrameId = errors.New("no frame id")

	// ErrNoFrameLocation happens when the decoded frame has no location.
	ErrNoFrameLocation = errors.New("no frame location")
)
