package evaluation

import "sync"

// History is the engine's append-only record of results. A limit of zero
// keeps everything; otherwise the oldest results are evicted first.
type History struct {
	mu      sync.Mutex
	limit   int
	results []*Result
}

func newHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) Append(r *Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, r)
	if h.limit > 0 && len(h.results) > h.limit {
		drop := len(h.results) - h.limit
		clear(h.results[:drop])
		h.results = append(h.results[:0], h.results[drop:]...)
	}
}

// All returns a snapshot, oldest first.
func (h *History) All() []*Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Result, len(h.results))
	copy(out, h.results)
	return out
}

// For returns results whose candidate name matches exactly.
func (h *History) For(candidateName string) []*Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*Result
	for _, r := range h.results {
		if r.CandidateName == candidateName {
			out = append(out, r)
		}
	}
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.results)
}

func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = nil
}
