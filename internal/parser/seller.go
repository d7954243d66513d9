package parser

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

type sellerRule struct {
	domain string
	name   string // "" marks a domain that is explicitly unresolvable
}

// domainSellers is ordered: more specific subdomains come before their
// parent domain.
var domainSellers = []sellerRule{
	{"amazon.com", "Amazon"},
	{"electronics.woot.com", "Woot"},
	{"woot.com", "Woot"},
	{"meh.com", "Meh"},
	{"costco.com", "Costco"},
	{"target.com", "Target"},
	{"walmart.com", "Walmart"},
	{"mavely.app", "Mavely"},
	{"bit.ly", ""}, // shortener, no seller inferred
}

// Domain returns the registrable domain (eTLD+1) of a URL, or "" when the
// URL has no usable host.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// InferSeller scans URLs in order and maps the first host matching a known
// retail domain to its seller name. The boolean reports whether any domain
// matched; a matched shortener returns ("", true) and the scan stops, so no
// seller is inferred from later URLs either.
func InferSeller(urls []string) (string, bool) {
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host == "" {
			continue
		}
		for _, r := range domainSellers {
			if host == r.domain || strings.HasSuffix(host, "."+r.domain) {
				return r.name, true
			}
		}
	}
	return "", false
}
