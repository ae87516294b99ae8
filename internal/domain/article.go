package domain

import "time"

// FallbackSummary replaces blank provider descriptions.
const FallbackSummary = "No summary available."

// Defaults used when a facet is omitted or a user carries no preference.
const (
	DefaultCategory = "top"
	DefaultCountry  = "in"
)

// Article is the canonical, provider-independent shape. Ephemeral: recomputed
// per request, never persisted.
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source,omitempty"`
	Category    string    `json:"category"`
	Country     string    `json:"country"`
}

// Upstream facet allow-lists. The provider's parameter space is fixed; values
// outside these sets produce silent empty results or provider errors, so they
// are rejected at the boundary instead.
var (
	Categories = []string{
		"top", "business", "entertainment", "environment", "food", "health",
		"politics", "science", "sports", "technology", "tourism", "world",
	}
	Countries = []string{"in", "us", "gb", "au", "ca", "de", "fr", "it"}
)

func IsValidCategory(c string) bool {
	return contains(Categories, c)
}

func IsValidCountry(c string) bool {
	return contains(Countries, c)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
