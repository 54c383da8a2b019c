// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/grounding-engine/internal/redirect"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Placeholder is the display name of a source with no usable domain.
const Placeholder = "Source"

// knownSiteNames maps a domain or registrable domain to the name readers
// know the site by.
var knownSiteNames = map[string]string{
	"wikipedia.org":      "Wikipedia",
	"en.wikipedia.org":   "Wikipedia",
	"wikimedia.org":      "Wikimedia",
	"youtube.com":        "YouTube",
	"youtu.be":           "YouTube",
	"github.com":         "GitHub",
	"gitlab.com":         "GitLab",
	"stackoverflow.com":  "Stack Overflow",
	"stackexchange.com":  "Stack Exchange",
	"reddit.com":         "Reddit",
	"medium.com":         "Medium",
	"nytimes.com":        "The New York Times",
	"washingtonpost.com": "The Washington Post",
	"wsj.com":            "The Wall Street Journal",
	"theguardian.com":    "The Guardian",
	"bbc.com":            "BBC",
	"bbc.co.uk":          "BBC",
	"cnn.com":            "CNN",
	"reuters.com":        "Reuters",
	"apnews.com":         "AP News",
	"bloomberg.com":      "Bloomberg",
	"ft.com":             "Financial Times",
	"economist.com":      "The Economist",
	"npr.org":            "NPR",
	"forbes.com":         "Forbes",
	"techcrunch.com":     "TechCrunch",
	"theverge.com":       "The Verge",
	"arstechnica.com":    "Ars Technica",
	"wired.com":          "WIRED",
	"cnbc.com":           "CNBC",
	"imdb.com":           "IMDb",
	"linkedin.com":       "LinkedIn",
	"x.com":              "X",
	"twitter.com":        "X",
	"facebook.com":       "Facebook",
	"instagram.com":      "Instagram",
	"tiktok.com":         "TikTok",
	"amazon.com":         "Amazon",
	"apple.com":          "Apple",
	"microsoft.com":      "Microsoft",
	"openai.com":         "OpenAI",
	"go.dev":             "Go",
	"golang.org":         "Go",
	"arxiv.org":          "arXiv",
	"nih.gov":            "NIH",
	"cdc.gov":            "CDC",
	"who.int":            "WHO",
	"mayoclinic.org":     "Mayo Clinic",
	"webmd.com":          "WebMD",
	"britannica.com":     "Britannica",
	"investopedia.com":   "Investopedia",
	"nature.com":         "Nature",
	"sciencedirect.com":  "ScienceDirect",
	"quora.com":          "Quora",
	"tripadvisor.com":    "Tripadvisor",
	"yelp.com":           "Yelp",
	"espn.com":           "ESPN",
	"nasa.gov":           "NASA",
}

// siteNames builds the lookup table from the built-in names overlaid with
// overrides. Keys are cleaned like hosts; blank entries are ignored.
func siteNames(overrides []types.DisplayNameOverride) map[string]string {
	names := make(map[string]string, len(knownSiteNames)+len(overrides))
	for k, v := range knownSiteNames {
		names[k] = v
	}
	for _, o := range overrides {
		k, v := redirect.CleanHost(o.Domain), strings.TrimSpace(o.Name)
		if k != "" && v != "" {
			names[k] = v
		}
	}
	return names
}

// DisplayName returns the human-readable name of domain: a table entry for
// the domain or its registrable domain, else the title-cased first label of
// the domain itself, else Placeholder when domain is empty. IP addresses are
// returned unchanged.
func (n *Normalizer) DisplayName(domain string) string {
	domain = redirect.CleanHost(domain)
	if domain == "" {
		return Placeholder
	}
	if name, ok := n.names[domain]; ok {
		return name
	}
	if net.ParseIP(domain) != nil {
		return domain
	}
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(domain); err == nil {
		if name, ok := n.names[registrable]; ok {
			return name
		}
	}

	label := domain
	if i := strings.IndexByte(domain, '.'); i > 0 {
		label = domain[:i]
	}
	// Casers keep state; one per call keeps DisplayName safe for
	// concurrent use.
	return cases.Title(language.Und).String(label)
}
