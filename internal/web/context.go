package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/sheetmap/internal/core"
)

// WithRequestMetadata tags ctx with the caller of r for job logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithClient(ctx, core.Client{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Origin:    "http",
	})
}

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already rewritten for requests from trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
