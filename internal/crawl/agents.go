package crawl

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/normalize"
)

// Agent is one platform-targeted discovery strategy: fixed query templates
// plus filters that decide which result rows it keeps.
type Agent struct {
	ID       string
	Platform model.Platform
	Queries  []string

	// AllowedHosts admits a row only when the canonical URL's host matches
	// one of these, exactly or as a subdomain.
	AllowedHosts []string

	// PathPrefix, when set, additionally requires the URL path to start
	// with it.
	PathPrefix string

	// RequiredAllTerms must all appear in the row's combined url/title/
	// snippet text. Skipped under relaxed matching.
	RequiredAllTerms []string

	// RequiredAnyTerms requires at least one hit when non-empty. Skipped
	// under relaxed matching.
	RequiredAnyTerms []string

	// MaxResults overrides the run-level per-agent cap when > 0.
	MaxResults int
}

// Matches applies the agent's host, path, and term filters to a canonical URL
// and its searchable text.
func (a Agent) Matches(canonicalURL, searchable string, relaxed bool) bool {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return false
	}

	hostOK := false
	for _, allowed := range a.AllowedHosts {
		if normalize.HostMatches(u.Hostname(), allowed) {
			hostOK = true
			break
		}
	}
	if !hostOK {
		return false
	}
	if a.PathPrefix != "" && !strings.HasPrefix(u.Path, a.PathPrefix) {
		return false
	}
	if relaxed {
		return true
	}

	lower := strings.ToLower(searchable)
	for _, term := range a.RequiredAllTerms {
		if !strings.Contains(lower, strings.ToLower(term)) {
			return false
		}
	}
	if len(a.RequiredAnyTerms) > 0 {
		hit := false
		for _, term := range a.RequiredAnyTerms {
			if strings.Contains(lower, strings.ToLower(term)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// DefaultAgents is the built-in registry, one agent per platform plus a
// direct storefront agent.
func DefaultAgents() []Agent {
	return []Agent{
		{
			ID:       "instagram-stan",
			Platform: model.PlatformInstagram,
			Queries: []string{
				`site:instagram.com "stan.store"`,
				`site:instagram.com "stan.store" coach`,
				`site:instagram.com "stan.store" creator`,
			},
			AllowedHosts:     []string{"instagram.com"},
			RequiredAllTerms: []string{"stan.store"},
		},
		{
			ID:       "tiktok-stan",
			Platform: model.PlatformTikTok,
			Queries: []string{
				`site:tiktok.com "stan.store"`,
				`site:tiktok.com "stan.store" creator`,
			},
			AllowedHosts:     []string{"tiktok.com"},
			PathPrefix:       "/@",
			RequiredAllTerms: []string{"stan.store"},
		},
		{
			ID:       "x-stan",
			Platform: model.PlatformX,
			Queries: []string{
				`site:x.com "stan.store"`,
				`site:twitter.com "stan.store"`,
			},
			AllowedHosts:     []string{"x.com", "twitter.com"},
			RequiredAllTerms: []string{"stan.store"},
		},
		{
			ID:       "youtube-stan",
			Platform: model.PlatformYouTube,
			Queries: []string{
				`site:youtube.com "stan.store"`,
				`site:youtube.com "stan.store" course`,
			},
			AllowedHosts:     []string{"youtube.com", "youtu.be"},
			RequiredAllTerms: []string{"stan.store"},
		},
		{
			ID:       "linkedin-creators",
			Platform: model.PlatformLinkedIn,
			Queries: []string{
				`site:linkedin.com/in "stan.store"`,
				`site:linkedin.com "stan.store" creator`,
			},
			AllowedHosts:     []string{"linkedin.com"},
			RequiredAnyTerms: []string{"stan.store", "creator", "coach"},
		},
		{
			ID:       "stan-directory",
			Platform: model.PlatformUnknown,
			Queries: []string{
				`site:stan.store coach`,
				`site:stan.store course`,
				`site:stan.store "1:1"`,
			},
			AllowedHosts: []string{"stan.store"},
		},
	}
}

// SelectAgents filters the registry down to the requested ids, or returns all
// agents when ids is empty. Unknown ids are an error.
func SelectAgents(registry []Agent, ids []string) ([]Agent, error) {
	if len(ids) == 0 {
		return registry, nil
	}

	byID := make(map[string]Agent, len(registry))
	for _, a := range registry {
		byID[a.ID] = a
	}

	out := make([]Agent, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, eris.Errorf("crawl: unknown agent %q", id)
		}
		out = append(out, a)
	}
	return out, nil
}
