package guard

import (
	"net"
	"net/http"
	"strings"
)

// ClientKey derives the rate-limit bucket for r: the first X-Forwarded-For
// entry, else the first X-Real-IP entry, else the host of RemoteAddr. Only
// the first comma-separated token of a header is considered.
func ClientKey(r *http.Request) string {
	if v := firstToken(r.Header.Get("X-Forwarded-For")); v != "" {
		return v
	}
	if v := firstToken(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func firstToken(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
