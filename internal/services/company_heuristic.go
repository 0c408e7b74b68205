package services

import (
	"net/url"
	"strings"
)

const UnknownCompany = "Unknown Company"

type knownBoard struct {
	domain    string
	label     string
	substring bool
}

// knownBoards is checked in order; the first match wins. Substring boards
// match anywhere in the hostname, the rest only as the host or a subdomain of it.
var knownBoards = []knownBoard{
	{"linkedin.com", "LinkedIn Job", true},
	{"indeed.com", "Indeed Job", true},
	{"glassdoor.com", "Glassdoor Job", true},
	{"greenhouse.io", "Greenhouse Job", true},
	{"lever.co", "LEVER", false},
	{"myworkdayjobs.com", "Workday Job", false},
}

func (b knownBoard) matches(host string) bool {
	if b.substring {
		return strings.Contains(host, b.domain)
	}
	return host == b.domain || strings.HasSuffix(host, "."+b.domain)
}

// CompanyFromURL derives a display label from a posting URL when nothing
// better is known. It never fails: anything unparseable is UnknownCompany.
func CompanyFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return UnknownCompany
	}
	// browsers lowercase the host before anyone sees it
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return UnknownCompany
	}

	// Rule 1: job boards get a fixed label
	for _, b := range knownBoards {
		if b.matches(host) {
			return b.label
		}
	}

	// Rule 2: https://www.stripe.com/jobs -> STRIPE
	host = strings.TrimPrefix(host, "www.")
	first, _, _ := strings.Cut(host, ".")
	if first == "" {
		return UnknownCompany
	}
	return strings.ToUpper(first)
}
