package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// partialIPRe accepts every prefix of a dotted IPv4 address the user
// may be in the middle of typing: "", "192", "192.", "192.168.1.5".
var partialIPRe = regexp.MustCompile(
	`^((25[0-5]|2[0-4][0-9]|[0-1][0-9]{2}|[1-9][0-9]|[0-9])\.){0,3}` +
		`((25[0-5]|2[0-4][0-9]|[0-1][0-9]{2}|[1-9][0-9]|[0-9])){0,1}$`)

// MatchPartialIP reports whether s is a (possibly incomplete) IPv4
// address.
func MatchPartialIP(s string) bool {
	return partialIPRe.MatchString(s)
}

// CanonicalIPv4 rewrites a complete dotted IPv4 address without
// leading zeros, so "010.001.1.1" becomes "10.1.1.1". ok is false when
// s is not four octets in 0-255.
func CanonicalIPv4(s string) (ip string, ok bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return "", false
	}
	for i, p := range parts {
		if p == "" || len(p) > 3 {
			return "", false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 || p[0] == '+' || p[0] == '-' {
			return "", false
		}
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "."), true
}

// ValidatePort checks p against the connector's picker range.
func ValidatePort(p int) error {
	if p < MinPort || p > MaxPort {
		return fmt.Errorf("port %d out of range %d-%d", p, MinPort, MaxPort)
	}
	return nil
}

// ParseEndpoint accepts "host:port", a bare "host" (default port), or
// the player's QR payload: the address bytes and the port joined by
// commas, e.g. "192,168,1,5,13337".
func ParseEndpoint(s string) (host string, port int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(s, ",") {
		return parseQRPayload(s)
	}

	h, p, splitErr := net.SplitHostPort(s)
	if splitErr != nil {
		// No port, or an unbracketed IPv6 literal.
		if strings.Count(s, ":") > 1 && net.ParseIP(s) == nil {
			return "", 0, fmt.Errorf("invalid endpoint %q: %w", s, splitErr)
		}
		return s, DefaultPort, nil
	}
	if h == "" {
		return "", 0, fmt.Errorf("invalid endpoint %q: missing host", s)
	}
	port, err = strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", p)
	}
	if err := ValidatePort(port); err != nil {
		return "", 0, err
	}
	return h, port, nil
}

func parseQRPayload(s string) (string, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != net.IPv4len+1 && len(parts) != net.IPv6len+1 {
		return "", 0, fmt.Errorf("invalid QR payload %q: want address bytes and a port", s)
	}

	ip := make(net.IP, len(parts)-1)
	for i, part := range parts[:len(parts)-1] {
		b, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || b < 0 || b > 255 {
			return "", 0, fmt.Errorf("invalid QR payload %q: byte %d is %q", s, i, part)
		}
		ip[i] = byte(b)
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid QR payload %q: bad port", s)
	}
	if err := ValidatePort(port); err != nil {
		return "", 0, err
	}
	return ip.String(), port, nil
}
