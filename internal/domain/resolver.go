// Package domain derives the domains a cookie listing is resolved against.
package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// MainDomainOf approximates the registrable parent of hostname by keeping
// its last two labels behind a leading dot. Hostnames with fewer than two
// labels are returned unchanged.
//
// No public suffix list is consulted, so multi-part suffixes such as
// co.uk resolve to ".co.uk".
func MainDomainOf(hostname string) string {
	parts := strings.Split(hostname, ".")
	if len(parts) >= 2 {
		return "." + strings.Join(parts[len(parts)-2:], ".")
	}
	return hostname
}

// HostnameOf extracts the hostname from a page URL.
func HostnameOf(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return host, nil
}
