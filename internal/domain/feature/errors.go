package feature

import "errors"

// ErrUnsupportedKind flags a snapshot kind that must never feed
// training features.
var ErrUnsupportedKind = errors.New("unsupported snapshot kind")
