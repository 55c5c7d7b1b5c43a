package httpserver

import (
	"net/http"
	"time"

	"curaframe/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 120 * time.Second
)

// New builds the API server. Zero read or write timeouts fall back to the
// configuration defaults so a partially filled config never yields an
// unbounded server.
func New(cfg config.Server, handler http.Handler) *http.Server {
	read, write := cfg.ReadTimeout, cfg.WriteTimeout
	if read <= 0 {
		read = 30 * time.Second
	}
	if write <= 0 {
		write = 60 * time.Second
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: min(readHeaderTimeout, read),
		ReadTimeout:       read,
		WriteTimeout:      write,
		IdleTimeout:       idleTimeout,
	}
}
