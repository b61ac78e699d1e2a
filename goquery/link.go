package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractProductLink finds the first link on a search-results page that
// points into one of the allowed domains and contains at least one of the
// query tokens. Both href and data-href attributes are scanned, in
// document order. Relative links are resolved against the first allowed
// domain. Returns false when nothing matches; structural drift in the
// page is a miss, never an error.
func ExtractProductLink(html string, domains, tokens []string) (string, bool) {
	if len(domains) == 0 {
		return "", false
	}
	doc, ok := parse(html)
	if !ok {
		return "", false
	}

	for _, attr := range []string{"href", "data-href"} {
		var found string
		doc.Find("[" + attr + "]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			link, exists := sel.Attr(attr)
			if !exists || link == "" {
				return true
			}
			if !matchesDomain(link, domains) || !containsToken(link, tokens) {
				return true
			}
			found = link
			return false
		})
		if found != "" {
			return absolute(found, domains[0]), true
		}
	}
	return "", false
}

func matchesDomain(link string, domains []string) bool {
	for _, d := range domains {
		if strings.Contains(link, d) {
			return true
		}
	}
	return false
}

func containsToken(link string, tokens []string) bool {
	low := strings.ToLower(link)
	for _, t := range tokens {
		if strings.Contains(low, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func absolute(link, domain string) string {
	switch {
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	case strings.HasPrefix(link, "/"):
		return "https://" + domain + link
	default:
		return link
	}
}
