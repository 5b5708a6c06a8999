package core

import "context"

type contextKey string

const ctxKeyClientIP contextKey = "client_ip"

// ContextWithClientIP records the requesting client's address on ctx so it
// is stored with the run.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIPFromContext returns the address set by ContextWithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}
