// Package serienfans implements the Adapter interface for
// serienfans.org, a German TV-series DDL site with a JSON search API
// and a JSON-wrapped-HTML season API. The JSON endpoints are read with
// gjson; the HTML payload inside them is parsed with goquery.
package serienfans

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/scavengarr/scavengarr/internal/domain"
)

const (
	name      = "serienfans"
	baseURL   = "https://serienfans.org"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var initSeasonRe = regexp.MustCompile(`initSeason\(\s*'([^']+)'`)

// Adapter scrapes serienfans.org. It only ever contributes TV results
// (category 5000), matching the site's own scope.
type Adapter struct {
	httpClient *http.Client
}

func New() *Adapter {
	return &Adapter{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

func (a *Adapter) Name() string                    { return name }
func (a *Adapter) Provides() domain.Provides       { return domain.ProvidesDownload }
func (a *Adapter) Kind() domain.AdapterKind        { return domain.AdapterCheap }
func (a *Adapter) DefaultLanguage() string         { return "de" }
func (a *Adapter) CacheTTL() (time.Duration, bool) { return 0, false }

func (a *Adapter) Search(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
	urlIDs, err := a.searchAPI(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: serienfans search: %v", domain.ErrAdapterFailure, err)
	}
	if len(urlIDs) == 0 {
		return nil, nil
	}

	var results []domain.RawSearchResult
	for _, urlID := range urlIDs {
		results = append(results, a.processSeries(ctx, urlID, q.Season, q.Episode)...)
	}
	return results, nil
}

func (a *Adapter) searchAPI(ctx context.Context, query string) ([]string, error) {
	reqURL := baseURL + "/api/v2/search?q=" + url.QueryEscape(query) + "&ql=DE"
	body, err := a.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	var urlIDs []string
	gjson.GetBytes(body, "result").ForEach(func(_, v gjson.Result) bool {
		if id := v.Get("url_id").String(); id != "" {
			urlIDs = append(urlIDs, id)
		}
		return true
	})
	return urlIDs, nil
}

func (a *Adapter) processSeries(ctx context.Context, urlID string, season, episode *int) []domain.RawSearchResult {
	title, seriesID, ok := a.fetchDetailPage(ctx, urlID)
	if !ok {
		return nil
	}

	seasonParam := "ALL"
	if season != nil {
		seasonParam = strconv.Itoa(*season)
	}
	releases, episodes := a.fetchSeason(ctx, seriesID, seasonParam)

	sourceURL := baseURL + "/" + urlID

	if episode != nil {
		return filterEpisodes(title, episodes, *episode, sourceURL)
	}

	var results []domain.RawSearchResult
	for _, rel := range releases {
		if len(rel.links) == 0 {
			continue
		}
		results = append(results, domain.RawSearchResult{
			Title:       title,
			Category:    domain.CategoryTV,
			PrimaryLink: rel.links[0].URL,
			Links:       rel.links,
			ReleaseName: rel.releaseName,
			Size:        rel.size,
		})
	}
	return results
}

func filterEpisodes(title string, episodes []episodeEntry, episode int, sourceURL string) []domain.RawSearchResult {
	epStr := strconv.Itoa(episode)
	var results []domain.RawSearchResult
	for _, ep := range episodes {
		if strings.TrimSpace(ep.num) != epStr || len(ep.links) == 0 {
			continue
		}
		displayTitle := fmt.Sprintf("%s - E%s", title, ep.num)
		if ep.title != "" {
			displayTitle = fmt.Sprintf("%s - E%s - %s", title, ep.num, ep.title)
		}
		results = append(results, domain.RawSearchResult{
			Title:       displayTitle,
			Category:    domain.CategoryTV,
			PrimaryLink: ep.links[0].URL,
			Links:       ep.links,
		})
	}
	return results
}

func (a *Adapter) fetchDetailPage(ctx context.Context, urlID string) (title, seriesID string, ok bool) {
	reqURL := baseURL + "/" + urlID
	body, err := a.get(ctx, reqURL)
	if err != nil {
		return "", "", false
	}
	m := initSeasonRe.FindStringSubmatch(string(body))
	if m == nil {
		return "", "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", "", false
	}
	title = strings.TrimSpace(doc.Find("h2").First().Contents().Not("i").Text())
	if title == "" {
		title = urlID
	}
	return title, m[1], true
}

type releaseEntry struct {
	releaseName string
	size        string
	links       []domain.HosterLink
}

type episodeEntry struct {
	num   string
	title string
	links []domain.HosterLink
}

// fetchSeason requests the JSON-wrapped-HTML season API and parses its
// embedded "html" fragment with goquery, since the fragment itself is
// server-rendered HTML (the JSON envelope only carries that one field).
func (a *Adapter) fetchSeason(ctx context.Context, seriesID, season string) ([]releaseEntry, []episodeEntry) {
	reqURL := baseURL + "/api/v1/" + seriesID + "/season/" + season + "?lang=ALL"
	body, err := a.get(ctx, reqURL)
	if err != nil {
		return nil, nil
	}
	html := gjson.GetBytes(body, "html").String()
	if html == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil
	}

	var releases []releaseEntry
	var episodes []episodeEntry

	doc.Find(".entry").Each(func(_ int, entry *goquery.Selection) {
		if epRows := entry.Find(".list.simple .row").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return !s.HasClass("head")
		}); epRows.Length() > 0 {
			epRows.Each(func(_ int, row *goquery.Selection) {
				cells := row.Children()
				num := strings.TrimSpace(cells.Eq(0).Text())
				epTitle := strings.TrimSpace(cells.Eq(1).Text())
				links := hosterLinksIn(row)
				if num != "" && len(links) > 0 {
					episodes = append(episodes, episodeEntry{num: num, title: epTitle, links: links})
				}
			})
			return
		}

		releaseName := strings.TrimSpace(entry.Find("small").First().Text())
		size := strings.TrimSpace(entry.Find("span.morespec").First().Text())
		links := hosterLinksIn(entry)
		if len(links) > 0 {
			releases = append(releases, releaseEntry{releaseName: releaseName, size: size, links: links})
		}
	})

	return releases, episodes
}

func hosterLinksIn(s *goquery.Selection) []domain.HosterLink {
	var links []domain.HosterLink
	s.Find("a.dlb").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}
		hoster := strings.TrimSpace(a.Find("span").First().Text())
		links = append(links, domain.HosterLink{
			HosterName: strings.ToLower(hoster),
			URL:        href,
		})
	})
	return links
}

func (a *Adapter) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", reqURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", reqURL, resp.StatusCode)
	}
	return ioutil.ReadAll(resp.Body)
}
