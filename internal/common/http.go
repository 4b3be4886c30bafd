package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP reports the address a request arrived from, for log enrichment.
// The router installs chi's RealIP middleware, so RemoteAddr already carries
// the forwarded client address; the X-Forwarded-For fallback covers handlers
// exercised outside that chain.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	return strings.TrimSpace(first)
}
