package middleware

import (
	"net"
	"strings"

	"github.com/labstack/echo/v4"
)

// clientIP resolves the caller's address, preferring proxy-provided headers
// in trust order, then the socket's remote address. IPv6-mapped IPv4 and
// loopback forms are normalized.
func clientIP(c echo.Context) string {
	req := c.Request()

	candidates := []string{
		req.Header.Get("CF-Connecting-IP"),
		req.Header.Get("X-Real-IP"),
		firstForwarded(req.Header.Get("X-Forwarded-For")),
		remoteHost(req.RemoteAddr),
	}

	for _, ip := range candidates {
		if ip = strings.TrimSpace(ip); ip != "" {
			return normalizeIP(ip)
		}
	}
	return "unknown"
}

func firstForwarded(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return first
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func normalizeIP(ip string) string {
	ip = strings.TrimPrefix(strings.TrimSuffix(ip, "]"), "[")
	ip = strings.TrimPrefix(ip, "::ffff:")
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}
