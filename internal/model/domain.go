package model

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// DomainID returns the deterministic identifier for a domain name.
// It is a name-based UUIDv5 in the URL namespace, so repeated runs and
// different workers always address the same row.
func DomainID(domainName string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(NormalizeDomain(domainName)))
}

// NormalizeDomain reduces user or queue input to a bare lower-case host name.
// It accepts values such as "Example.COM", "https://example.com/about" and
// "example.com." and returns "example.com" for all of them.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}

	// Drop any path, query or port left over from a scheme-less value.
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if host, _, found := strings.Cut(s, ":"); found {
		s = host
	}

	return strings.TrimSuffix(strings.ToLower(s), ".")
}

// HomepageURL returns the https URL of the domain's root page.
func HomepageURL(domainName string) string {
	return "https://" + NormalizeDomain(domainName)
}
