package web

import (
	"context"
	"net"
	"net/http"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
)

// withRequestMetadata adds the client IP to ctx for run records.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClientIP(ctx, clientIP(r))
}

// clientIP returns the request's remote IP without the port. RemoteAddr has
// already been rewritten by TrustedRealIP for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
