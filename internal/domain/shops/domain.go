package shops

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidDomain = errors.New("invalid shop domain")

var shopDomainRe = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*\.myshopify\.com$`)

// NormalizeDomain lowercases a shop reference and strips scheme and path, so
// "https://Demo.myshopify.com/" and "demo.myshopify.com" resolve to the same tenant.
func NormalizeDomain(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if !shopDomainRe.MatchString(s) {
		return "", ErrInvalidDomain
	}
	return s, nil
}

func IsValidDomain(raw string) bool {
	_, err := NormalizeDomain(raw)
	return err == nil
}
