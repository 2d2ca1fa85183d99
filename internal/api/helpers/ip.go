package helpers

import (
	"net"
	"net/http"
	"strings"
)

// GetRealIP extracts the client's address, preferring X-Forwarded-For
// and X-Real-IP over RemoteAddr when present. Trusting these headers
// assumes the deployment's reverse proxy strips and re-sets them; a
// direct client cannot set them through that proxy.
func GetRealIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, p := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
				return ip
			}
		}
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}

	return net.ParseIP(r.RemoteAddr)
}
