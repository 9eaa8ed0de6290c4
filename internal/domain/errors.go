package domain

import "errors"

// ErrNotConfigured marks a provider whose API key or endpoint is absent.
// This is the only error class allowed to abort a request outright; it is
// surfaced at first use rather than at startup.
var ErrNotConfigured = errors.New("provider not configured")
