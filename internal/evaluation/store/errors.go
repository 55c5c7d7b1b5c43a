package store

import "errors"

// ErrNilResult is returned when Save is called without a result.
var ErrNilResult = errors.New("nil evaluation result")
