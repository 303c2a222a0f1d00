package middleware

import (
	"net"
	"net/http"
	"strings"
)

// TrustedProxy sets RemoteAddr to the client address recorded by the one
// reverse proxy in front of the server: the last X-Forwarded-For entry.
// Entries before it are client-supplied and ignored. Only mount it when that
// proxy always appends the header, otherwise clients pick their own address.
func TrustedProxy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := lastForwardedFor(r.Header.Values("X-Forwarded-For")); ip != "" {
			port := "0"
			if _, p, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				port = p
			}
			r.RemoteAddr = net.JoinHostPort(ip, port)
		}
		next.ServeHTTP(w, r)
	})
}

func lastForwardedFor(values []string) string {
	if len(values) == 0 {
		return ""
	}
	hops := strings.Split(values[len(values)-1], ",")
	ip := net.ParseIP(strings.TrimSpace(hops[len(hops)-1]))
	if ip == nil {
		return ""
	}
	return ip.String()
}
