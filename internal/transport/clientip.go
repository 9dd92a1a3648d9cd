package transport

import (
	"net"
	"net/http"
	"strings"
)

// ForwardedIP returns the first X-Forwarded-For entry, else X-Real-IP, else "".
func ForwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return ""
}

// ClientIP prefers the proxy headers only when trustProxy is set, since any client can write them.
// Otherwise, or when no header is present, it is the connection's remote address.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := ForwardedIP(r); ip != "" {
			return ip
		}
	}
	return RemoteIP(r)
}

// RemoteIP is the host part of the connection's remote address.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
