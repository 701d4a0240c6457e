// Package tmdb implements the TMDB-backed metadata Source:
// German-locale lookups, /find/{imdb_id} two-list extraction for IMDb
// ids, and direct /movie/{id} or /tv/{id} lookups for tmdb:<id> ids.
package tmdb

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/domain"
)

const baseURL = "https://api.themoviedb.org/3"

// Client talks to the TMDB v3 API. Responses are read with gjson
// rather than decoded into full structs; only a handful of fields are
// ever needed.
type Client struct {
	apiKey     string
	locale     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a TMDB client. apiKey is the v3 API key passed as a
// query parameter, not the v4 bearer token. locale selects the
// translation titles are returned in, e.g. "de-DE".
func NewClient(apiKey, locale string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locale == "" {
		locale = "de-DE"
	}
	return &Client{
		apiKey:     apiKey,
		locale:     locale,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve implements metadata.Source. When externalID is an IMDb ID it
// is looked up via /find/{imdb_id} with external_source=imdb_id; when it
// is a tmdb:<id> fallback ID, /movie/{id} or /tv/{id} is used directly.
func (c *Client) Resolve(ctx context.Context, externalID string, kind domain.Kind) (domain.ReferenceTitle, error) {
	if id, ok := parseFallbackID(externalID); ok {
		return c.resolveByTMDBID(ctx, id, kind)
	}
	return c.resolveByIMDbID(ctx, externalID, kind)
}

func (c *Client) resolveByIMDbID(ctx context.Context, imdbID string, kind domain.Kind) (domain.ReferenceTitle, error) {
	reqURL := fmt.Sprintf("%s/find/%s?api_key=%s&language=%s&external_source=imdb_id",
		baseURL, url.PathEscape(imdbID), url.QueryEscape(c.apiKey), url.QueryEscape(c.locale))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return domain.ReferenceTitle{}, err
	}

	listPath := "movie_results"
	if kind == domain.KindSeries {
		listPath = "tv_results"
	}
	results := gjson.GetBytes(body, listPath)
	if !results.IsArray() || len(results.Array()) == 0 {
		return domain.ReferenceTitle{}, fmt.Errorf("tmdb: no %s for %s", listPath, imdbID)
	}
	first := results.Array()[0]
	return c.referenceTitleFrom(first, kind), nil
}

func (c *Client) resolveByTMDBID(ctx context.Context, id int, kind domain.Kind) (domain.ReferenceTitle, error) {
	endpoint := "movie"
	if kind == domain.KindSeries {
		endpoint = "tv"
	}
	reqURL := fmt.Sprintf("%s/%s/%d?api_key=%s&language=%s", baseURL, endpoint, id, url.QueryEscape(c.apiKey), url.QueryEscape(c.locale))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return domain.ReferenceTitle{}, err
	}
	return c.referenceTitleFrom(gjson.ParseBytes(body), kind), nil
}

func (c *Client) referenceTitleFrom(node gjson.Result, kind domain.Kind) domain.ReferenceTitle {
	titleField := "title"
	dateField := "release_date"
	if kind == domain.KindSeries {
		titleField = "name"
		dateField = "first_air_date"
	}
	title := node.Get(titleField).String()
	year := yearFromDate(node.Get(dateField).String())
	return domain.ReferenceTitle{Title: title, Year: year, Kind: kind}
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb returned status %d", res.StatusCode)
	}
	return ioutil.ReadAll(res.Body)
}

// CatalogEntry is one row of a trending/search response, the subset of
// TMDB's payload the Stremio catalog surface needs to build a
// stremiotypes.MetaPreviewItem.
type CatalogEntry struct {
	TMDBID     int
	Title      string
	Year       int
	PosterPath string
}

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// PosterURL returns the full poster image URL, or "" when TMDB reported
// no poster for this entry.
func (e CatalogEntry) PosterURL() string {
	if e.PosterPath == "" {
		return ""
	}
	return posterBaseURL + e.PosterPath
}

// TrendingMovies lists the week's trending movies for the browseable
// catalog.
func (c *Client) TrendingMovies(ctx context.Context) ([]CatalogEntry, error) {
	reqURL := fmt.Sprintf("%s/trending/movie/week?api_key=%s&language=%s", baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.locale))
	return c.catalogEntries(ctx, reqURL, domain.KindMovie)
}

// TrendingTV lists the week's trending series.
func (c *Client) TrendingTV(ctx context.Context) ([]CatalogEntry, error) {
	reqURL := fmt.Sprintf("%s/trending/tv/week?api_key=%s&language=%s", baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.locale))
	return c.catalogEntries(ctx, reqURL, domain.KindSeries)
}

// SearchMovies runs a free-text TMDB movie search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]CatalogEntry, error) {
	reqURL := fmt.Sprintf("%s/search/movie?api_key=%s&language=%s&query=%s", baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.locale), url.QueryEscape(query))
	return c.catalogEntries(ctx, reqURL, domain.KindMovie)
}

// SearchTV runs a free-text TMDB series search.
func (c *Client) SearchTV(ctx context.Context, query string) ([]CatalogEntry, error) {
	reqURL := fmt.Sprintf("%s/search/tv?api_key=%s&language=%s&query=%s", baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.locale), url.QueryEscape(query))
	return c.catalogEntries(ctx, reqURL, domain.KindSeries)
}

func (c *Client) catalogEntries(ctx context.Context, reqURL string, kind domain.Kind) ([]CatalogEntry, error) {
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	titleField := "title"
	dateField := "release_date"
	if kind == domain.KindSeries {
		titleField = "name"
		dateField = "first_air_date"
	}
	results := gjson.GetBytes(body, "results")
	entries := make([]CatalogEntry, 0, len(results.Array()))
	for _, r := range results.Array() {
		entries = append(entries, CatalogEntry{
			TMDBID:     int(r.Get("id").Int()),
			Title:      r.Get(titleField).String(),
			Year:       yearFromDate(r.Get(dateField).String()),
			PosterPath: r.Get("poster_path").String(),
		})
	}
	return entries, nil
}

func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func parseFallbackID(externalID string) (int, bool) {
	if !strings.HasPrefix(externalID, "tmdb:") {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(externalID, "tmdb:"))
	if err != nil {
		return 0, false
	}
	return id, true
}
