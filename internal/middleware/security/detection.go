package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	saldolog "saldo/internal/log"
)

// DetectionMetrics tracks security detection events
type DetectionMetrics struct {
	SuspiciousRequests int64
	RejectedWebhooks   int64
}

// Detector handles suspicious request detection
type Detector struct {
	suspicious     atomic.Int64
	rejected       atomic.Int64
	trustedProxies []*net.IPNet
}

// NewDetector creates a new security detector
func NewDetector() *Detector {
	return &Detector{
		trustedProxies: []*net.IPNet{
			parseCIDR("127.0.0.0/8"),    // localhost
			parseCIDR("10.0.0.0/8"),     // private networks
			parseCIDR("172.16.0.0/12"),  // private networks
			parseCIDR("192.168.0.0/16"), // private networks
		},
	}
}

// parseCIDR is a helper to parse CIDR during initialization
func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

var suspiciousAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb",
	"masscan", "zgrab", "scanner",
}

// DetectSuspiciousRequest analyzes request patterns for potential threats
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	userAgent := strings.ToLower(r.Header.Get("User-Agent"))

	suspicious := containsAny(path, suspiciousPatterns) ||
		containsAny(query, suspiciousPatterns) ||
		containsAny(userAgent, suspiciousAgents)

	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", "CONNECT":
		suspicious = true
	}

	// Excessively long URLs
	if len(r.URL.String()) > 2048 {
		suspicious = true
	}

	// More than 5 proxy hops suggests header manipulation
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		suspicious = true
	}

	if suspicious {
		d.suspicious.Add(1)
	}
	return suspicious
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Middleware logs suspicious requests. It never blocks them.
func (d *Detector) Middleware(logger *saldolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d.DetectSuspiciousRequest(r) {
				fields := saldolog.NewFields().
					WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()).
					WithClientIP(d.ExtractClientIP(r))
				logger.WarnContext(r.Context(), "Suspicious request", fields.ToSlice()...)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractClientIP extracts the real client IP, validating forwarded headers
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil {
		return directIP
	}

	// Forwarded headers are only honoured from a trusted proxy
	if d.isTrustedProxy(parsedDirectIP) {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(clientIP) != nil {
				return clientIP
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return directIP
}

// isTrustedProxy checks if an IP is from a trusted proxy
func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns current security metrics
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: d.suspicious.Load(),
		RejectedWebhooks:   d.rejected.Load(),
	}
}

// AddTrustedProxy adds a trusted proxy network. Not safe to call while
// requests are being served.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}

	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}
