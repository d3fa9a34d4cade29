// Package identity supplies randomized, internally consistent browser
// identities for outbound requests. Each Profile couples a user agent
// with accept headers and client hints that match the platform the
// user agent claims, so a single request never presents a mixed
// fingerprint (e.g. a mobile UA with desktop viewport hints).
package identity

import (
	"fmt"
	"math/rand/v2"
	"strings"

	browser "github.com/EDDYCJY/fake-useragent"
)

// Profile is one coherent request-time browser identity. It is a
// stateless value chosen fresh per attempt.
type Profile struct {
	UserAgent string
	Mobile    bool
	Platform  string // sec-ch-ua-platform value, e.g. "Windows"
	Referer   string
}

// Headers renders the profile as a full header set for one request.
func (p Profile) Headers() map[string]string {
	h := map[string]string{
		"User-Agent":                p.UserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Referer":                   p.Referer,
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "max-age=0",
	}
	if p.Mobile {
		h["Sec-CH-UA-Mobile"] = "?1"
	} else {
		h["Sec-CH-UA-Mobile"] = "?0"
	}
	if p.Platform != "" {
		h["Sec-CH-UA-Platform"] = fmt.Sprintf("%q", p.Platform)
	}
	return h
}

// Rotator hands out a random identity per call. When the dynamic
// user-agent source is unavailable or returns garbage it falls back to
// a fixed pool; Next never fails and never panics.
type Rotator struct {
	dynamic bool
}

// NewRotator creates a Rotator. dynamic toggles the fake-useragent
// source; the hard-coded pool is always available.
func NewRotator(dynamic bool) *Rotator {
	return &Rotator{dynamic: dynamic}
}

var referers = []string{
	"https://www.google.com/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
}

// Next returns a plausible, internally consistent browser identity.
func (r *Rotator) Next() Profile {
	ua := ""
	if r.dynamic {
		ua = dynamicUA()
	}
	if ua == "" {
		return fallbackProfile()
	}
	p := profileFromUA(ua)
	p.Referer = referers[rand.IntN(len(referers))]
	return p
}

// dynamicUA asks the fake-useragent source for a random UA string.
// The library caches a scraped dataset and can misbehave on a cold
// miss, so any panic is swallowed and reported as "unavailable".
func dynamicUA() (ua string) {
	defer func() {
		if recover() != nil {
			ua = ""
		}
	}()
	return browser.Random()
}

// profileFromUA derives consistent platform hints from a UA string.
func profileFromUA(ua string) Profile {
	p := Profile{UserAgent: ua}
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "android"):
		p.Mobile = true
		p.Platform = "Android"
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"):
		p.Mobile = true
		p.Platform = "iOS"
	case strings.Contains(lower, "macintosh"), strings.Contains(lower, "mac os x"):
		p.Platform = "macOS"
	case strings.Contains(lower, "windows"):
		p.Platform = "Windows"
	case strings.Contains(lower, "linux"):
		p.Platform = "Linux"
	}
	if strings.Contains(lower, "mobile") {
		p.Mobile = true
	}
	return p
}

func fallbackProfile() Profile {
	p := fallbackProfiles[rand.IntN(len(fallbackProfiles))]
	p.Referer = referers[rand.IntN(len(referers))]
	return p
}
