package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"merapaper/internal/domain"
)

// ErrUpstream marks provider or network failures. Surfaced as-is: no retry,
// no circuit breaking, no caching.
var ErrUpstream = errors.New("news provider unavailable")

// Provider fetches articles for a category/country facet pair.
type Provider interface {
	Fetch(ctx context.Context, category, country string, limit int) ([]domain.Article, error)
}

// HTTPClient implements Provider against a newsdata-compatible API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://newsdata.io/api/1"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (c *HTTPClient) Fetch(ctx context.Context, category, country string, limit int) ([]domain.Article, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("language", "en")
	q.Set("category", category)
	q.Set("country", country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/news?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("news provider error",
				zap.Int("status", resp.StatusCode),
				zap.String("category", category),
				zap.String("country", country),
			)
		}
		return nil, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	var pr providerResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrUpstream, err)
	}
	if pr.Status != "" && pr.Status != "success" {
		return nil, fmt.Errorf("%w: provider status %q", ErrUpstream, pr.Status)
	}

	articles := make([]domain.Article, 0, len(pr.Results))
	for _, item := range pr.Results {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Link) == "" {
			continue
		}
		articles = append(articles, normalize(item, category, country))
		if limit > 0 && len(articles) >= limit {
			break
		}
	}
	return articles, nil
}

// normalize maps a heterogeneous provider item onto the canonical shape. A
// blank description is replaced with the fallback literal, not treated as an
// error.
func normalize(item providerItem, category, country string) domain.Article {
	summary := strings.TrimSpace(item.Description)
	if summary == "" {
		summary = strings.TrimSpace(item.Content)
	}
	if summary == "" {
		summary = domain.FallbackSummary
	}
	return domain.Article{
		Title:       strings.TrimSpace(item.Title),
		Summary:     summary,
		URL:         item.Link,
		ImageURL:    item.ImageURL,
		PublishedAt: parsePubDate(item.PubDate),
		Source:      item.SourceID,
		Category:    category,
		Country:     country,
	}
}

func parsePubDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

type providerResponse struct {
	Status  string         `json:"status"`
	Results []providerItem `json:"results"`
}

type providerItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Link        string `json:"link"`
	ImageURL    string `json:"image_url"`
	PubDate     string `json:"pubDate"`
	SourceID    string `json:"source_id"`
}
