package sentinel

import "errors"

// Sentinel errors for lookup facts. Catalogs and stores return these wrapped
// in a domain error so callers can match with errors.Is regardless of the
// message.
var (
	ErrNotFound = errors.New("not found")
)
