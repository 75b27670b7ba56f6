// Package scrape pulls candidate image references out of a blog post's HTML.
//
// Matching is done with regular expressions over the raw text; no DOM is
// built. The order of the heuristics is part of the contract: callers take
// the first candidate.
package scrape

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	ogImagePattern      = regexp.MustCompile(`<meta\s+property="og:image"\s+content="([^"]+)"`)
	twitterImagePattern = regexp.MustCompile(`<meta\s+name="twitter:image"\s+content="([^"]+)"`)
	firstImgPattern     = regexp.MustCompile(`<img[^>]+src="([^"]+)"`)
)

// candidatePatterns are tried in priority order.
var candidatePatterns = []*regexp.Regexp{
	ogImagePattern,
	twitterImagePattern,
	firstImgPattern,
}

// IsValidURL reports whether s parses as an absolute URL. Web URLs must
// also name a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	}
	return true
}

// Origin returns scheme://host of an absolute URL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String(), nil
}

// ExtractImageURLs returns the og:image, twitter:image and first <img> src
// values found in html, in that order. Each heuristic contributes at most its
// first match and duplicates are kept. Values that are not already http(s)
// URLs are resolved against baseURL; values that cannot be resolved are
// dropped.
func ExtractImageURLs(html, baseURL string) []string {
	var imageURLs []string
	for _, pattern := range candidatePatterns {
		match := pattern.FindStringSubmatch(html)
		if match == nil {
			continue
		}
		imageURL, err := resolve(match[1], baseURL)
		if err != nil {
			continue
		}
		imageURLs = append(imageURLs, imageURL)
	}
	return imageURLs
}

func resolve(ref, baseURL string) (string, error) {
	if strings.HasPrefix(ref, "http") {
		return ref, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	target, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(target).String(), nil
}
