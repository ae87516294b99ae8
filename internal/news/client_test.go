package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"merapaper/internal/domain"
)

const sampleResponse = `{
	"status": "success",
	"totalResults": 4,
	"results": [
		{"title": "Headline one", "description": "Something happened", "link": "https://n.example/1", "image_url": "https://n.example/1.jpg", "pubDate": "2026-08-30 07:15:00", "source_id": "wire"},
		{"title": "Headline two", "description": "   ", "link": "https://n.example/2", "pubDate": "2026-08-30T08:00:00Z"},
		{"title": "", "description": "orphan item without title", "link": "https://n.example/3"},
		{"title": "Headline four", "content": "Body only", "link": "https://n.example/4"}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "test-key", zap.NewNop()), srv
}

func TestHTTPClient_FetchNormalizes(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"apikey":   r.URL.Query().Get("apikey"),
			"category": r.URL.Query().Get("category"),
			"country":  r.URL.Query().Get("country"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})

	articles, err := client.Fetch(context.Background(), "top", "in", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotQuery["apikey"] != "test-key" || gotQuery["category"] != "top" || gotQuery["country"] != "in" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}

	// The title-less item is dropped; the rest normalize.
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Headline one" || first.Summary != "Something happened" {
		t.Fatalf("unexpected first article: %+v", first)
	}
	if first.Source != "wire" || first.ImageURL == "" {
		t.Fatalf("provider fields lost: %+v", first)
	}
	if first.PublishedAt.IsZero() {
		t.Fatalf("pubDate not parsed")
	}
	if first.Category != "top" || first.Country != "in" {
		t.Fatalf("facets not attached: %+v", first)
	}

	// Whitespace-only description takes the fallback literal.
	if articles[1].Summary != domain.FallbackSummary {
		t.Fatalf("fallback not applied: %q", articles[1].Summary)
	}

	// Content used when description missing.
	if articles[2].Summary != "Body only" {
		t.Fatalf("content fallback not applied: %q", articles[2].Summary)
	}
}

func TestHTTPClient_FetchTruncatesToLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})

	articles, err := client.Fetch(context.Background(), "top", "in", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
}

func TestHTTPClient_FetchUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.Fetch(context.Background(), "top", "in", 10); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestHTTPClient_FetchProviderErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","results":[]}`))
	})

	if _, err := client.Fetch(context.Background(), "top", "in", 10); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestHTTPClient_FetchNetworkError(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {})
	srv.Close()

	if _, err := client.Fetch(context.Background(), "top", "in", 10); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestHTTPClient_FetchMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	if _, err := client.Fetch(context.Background(), "top", "in", 10); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
