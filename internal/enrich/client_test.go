package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

// newTestClient points a client at a test server with the rate limiter
// disabled, so tests never wait on wall-clock tokens.
func newTestClient(doiURL, crossrefURL string) *Client {
	return NewClient(
		WithBaseURLs(doiURL, crossrefURL),
		WithRateLimit(rate.Inf),
	)
}

func TestResolveDOI(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{
			"title": "Deep Learning Systems",
			"author": [{"given": "John", "family": "Smith"}],
			"issued": {"date-parts": [[2020, 7]]},
			"container-title": "Proceedings of ICML",
			"page": "1-9",
			"DOI": "10.1234/dls",
			"subject": ["Machine Learning"],
			"type": "proceedings-article"
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	res, err := c.ResolveDOI(context.Background(), "10.1234/dls")
	if err != nil {
		t.Fatal(err)
	}

	if gotAccept != "application/vnd.citationstyles.csl+json" {
		t.Errorf("Accept header = %q", gotAccept)
	}
	if res.Title != "Deep Learning Systems" {
		t.Errorf("Title = %q", res.Title)
	}
	if len(res.Authors) != 1 || res.Authors[0] != "Smith, J." {
		t.Errorf("Authors = %v", res.Authors)
	}
	if res.Year != 2020 {
		t.Errorf("Year = %d", res.Year)
	}
	if res.Pages != "1-9" {
		t.Errorf("Pages = %q", res.Pages)
	}
	if len(res.Keywords) != 1 || res.Keywords[0] != "Machine Learning" {
		t.Errorf("Keywords = %v", res.Keywords)
	}
	if res.Source != "doi.org" {
		t.Errorf("Source = %q", res.Source)
	}
}

func TestResolveDOINotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	_, err := c.ResolveDOI(context.Background(), "10.1234/missing")
	if !IsNotFound(err) {
		t.Errorf("error = %v, want not-found", err)
	}
}

func TestRateLimitedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	_, err := c.ResolveDOI(context.Background(), "10.1234/x")
	if !IsRateLimited(err) {
		t.Errorf("error = %v, want rate-limited", err)
	}
}

func TestServerErrorIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	_, err := c.ResolveDOI(context.Background(), "10.1234/x")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Service != "doi.org" {
		t.Errorf("Service = %q", apiErr.Service)
	}
}

func TestLookupDOI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {
			"title": ["Convex Methods"],
			"author": [{"given": "Alice", "family": "Jones"}],
			"published-print": {"date-parts": [[2019]]},
			"container-title": ["Journal of Optimization"],
			"volume": "4",
			"issue": "2",
			"page": "100-120",
			"ISSN": ["1234-5678"],
			"DOI": "10.1234/convex",
			"type": "journal-article"
		}}`))
	}))
	defer srv.Close()

	c := newTestClient("", srv.URL)
	res, err := c.LookupDOI(context.Background(), "10.1234/convex")
	if err != nil {
		t.Fatal(err)
	}

	if res.Title != "Convex Methods" {
		t.Errorf("Title = %q", res.Title)
	}
	if res.Venue != "Journal of Optimization" {
		t.Errorf("Venue = %q", res.Venue)
	}
	if res.Volume != "4" || res.Issue != "2" {
		t.Errorf("Volume/Issue = %q/%q", res.Volume, res.Issue)
	}
	if res.ISSN != "1234-5678" {
		t.Errorf("ISSN = %q", res.ISSN)
	}
	if res.Source != "crossref" {
		t.Errorf("Source = %q", res.Source)
	}
}

func TestSearchTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.title"); got != "Deep Learning Systems" {
			t.Errorf("query.title = %q", got)
		}
		if got := r.URL.Query().Get("mailto"); got != "dev@example.org" {
			t.Errorf("mailto = %q", got)
		}
		w.Write([]byte(`{"message": {"items": [
			{"title": ["Deep Learning Systems"], "DOI": "10.1234/dls", "issued": {"date-parts": [[2020]]}},
			{"title": ["Deep Learning Surveys"], "DOI": "10.1234/other"}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(
		WithBaseURLs("", srv.URL),
		WithRateLimit(rate.Inf),
		WithMailto("dev@example.org"),
	)
	results, err := c.SearchTitle(context.Background(), "Deep Learning Systems", 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].DOI != "10.1234/dls" {
		t.Errorf("first DOI = %q", results[0].DOI)
	}
	if results[0].Year != 2020 {
		t.Errorf("first Year = %d (issued fallback)", results[0].Year)
	}
}

func TestSearchTitleEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"items": []}}`))
	}))
	defer srv.Close()

	c := newTestClient("", srv.URL)
	_, err := c.SearchTitle(context.Background(), "nothing", 3)
	if !IsNotFound(err) {
		t.Errorf("error = %v, want not-found", err)
	}
}

func TestGetHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv.URL, "")
	if _, err := c.ResolveDOI(ctx, "10.1234/x"); err == nil {
		t.Error("want error for cancelled context")
	}
}
