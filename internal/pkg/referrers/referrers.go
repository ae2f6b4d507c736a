package referrers

import (
	"net/url"
	"strings"
)

// ReferrerInfo is the classification result for a single referrer URL.
type ReferrerInfo struct {
	Source     string
	Medium     string
	Campaign   string
	SearchTerm string
	Internal   bool
}

// Traffic-source mediums.
const (
	MediumDirect   = "direct"
	MediumInternal = "internal"
	MediumSearch   = "search"
	MediumSocial   = "social"
	MediumReferral = "referral"
)

// Search engine hostnames, matched as substrings of the referrer host.
var searchEngines = []string{
	"google",
	"bing",
	"yahoo",
	"duckduckgo",
	"baidu",
	"yandex",
}

// Social network hostnames, matched as substrings of the referrer host.
var socialNetworks = []string{
	"facebook",
	"twitter",
	"linkedin",
	"instagram",
	"pinterest",
	"reddit",
	"tiktok",
	"youtube",
}

// Query parameters checked, in order, for a search term.
var searchTermParams = []string{"q", "query", "search", "p", "text"}

// Known domain variants mapped to canonical source labels. Unknown
// sources pass through unchanged.
var sourceAliases = map[string]string{
	"fb.com":               "facebook",
	"m.facebook.com":       "facebook",
	"l.facebook.com":       "facebook",
	"t.co":                 "twitter",
	"x.com":                "twitter",
	"lnkd.in":              "linkedin",
	"youtu.be":             "youtube",
	"old.reddit.com":       "reddit",
	"news.ycombinator.com": "hackernews",
}

// Classify categorizes a referrer URL into source, medium and, where
// applicable, campaign and search term. currentHost, when non-empty,
// marks same-site navigation as internal traffic. An empty or
// unparseable referrer is direct traffic, never an error.
func Classify(referrer, currentHost string) ReferrerInfo {
	direct := ReferrerInfo{Source: "(direct)", Medium: MediumDirect}

	if referrer == "" {
		return direct
	}

	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return direct
	}

	host := normalizeHost(parsed.Hostname())
	query := parsed.Query()

	if currentHost != "" && host == normalizeHost(currentHost) {
		return ReferrerInfo{Source: host, Medium: MediumInternal, Internal: true}
	}

	for _, engine := range searchEngines {
		if strings.Contains(host, engine) {
			return ReferrerInfo{
				Source:     engine,
				Medium:     MediumSearch,
				SearchTerm: firstParam(query, searchTermParams),
			}
		}
	}

	for _, network := range socialNetworks {
		if strings.Contains(host, network) {
			return ReferrerInfo{Source: network, Medium: MediumSocial}
		}
	}

	if utmSource := query.Get("utm_source"); utmSource != "" {
		medium := query.Get("utm_medium")
		if medium == "" {
			medium = MediumReferral
		}
		return ReferrerInfo{
			Source:   utmSource,
			Medium:   medium,
			Campaign: query.Get("utm_campaign"),
		}
	}

	return ReferrerInfo{Source: host, Medium: MediumReferral}
}

// ExtractDomain returns the referrer's hostname with any "www." prefix
// stripped, or an empty string when the URL cannot be parsed.
func ExtractDomain(referrer string) string {
	if referrer == "" {
		return ""
	}
	parsed, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	return normalizeHost(parsed.Hostname())
}

// NormalizeSource maps known domain variants to a canonical source
// label.
func NormalizeSource(source string) string {
	if canonical, ok := sourceAliases[strings.ToLower(source)]; ok {
		return canonical
	}
	return source
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func firstParam(query url.Values, names []string) string {
	for _, name := range names {
		if value := query.Get(name); value != "" {
			return value
		}
	}
	return ""
}
