package device

import "errors"

var (
	ErrNoDevices      = errors.New("no managed devices returned")
	ErrInvalidFilter  = errors.New("invalid operating system filter")
	ErrHistoryLookup  = errors.New("device history lookup failed")
	ErrUnknownOSLabel = errors.New("unknown operating system label")
)
