// Package streamcloud implements the Adapter interface for
// streamcloud.plus, a German DLE-CMS streaming site serving both films
// (meinecloud.click-style hoster injection) and series
// (season/episode tabs carrying data-link attributes). Detail pages
// are fetched concurrently after the search-page scrape.
package streamcloud

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/scavengarr/scavengarr/internal/domain"
)

const (
	name             = "streamcloud"
	baseURL          = "https://streamcloud.plus"
	maxConcurrentDoc = 3
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var (
	streamsOnclickRe = regexp.MustCompile(`window\.open\(\s*'([^']+)'\s*\)`)
	episodeLabelRe   = regexp.MustCompile(`\b(\d{1,2})x(\d{1,3})\b`)
)

// Adapter scrapes streamcloud.plus.
type Adapter struct {
	httpClient *http.Client
}

func New() *Adapter {
	return &Adapter{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

func (a *Adapter) Name() string                    { return name }
func (a *Adapter) Provides() domain.Provides       { return domain.ProvidesStream }
func (a *Adapter) Kind() domain.AdapterKind        { return domain.AdapterCheap }
func (a *Adapter) DefaultLanguage() string         { return "de" }
func (a *Adapter) CacheTTL() (time.Duration, bool) { return 0, false }

func (a *Adapter) Search(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
	items, err := a.searchPage(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: streamcloud search: %v", domain.ErrAdapterFailure, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return a.scrapeAll(ctx, items, q.Season, q.Episode), nil
}

type searchItem struct {
	title string
	url   string
}

func (a *Adapter) searchPage(ctx context.Context, query string) ([]searchItem, error) {
	reqURL := baseURL + "/?do=search&subaction=search&story=" + url.QueryEscape(query)
	doc, err := a.getDoc(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	var items []searchItem
	doc.Find("div.item.item-video").Each(func(_ int, s *goquery.Selection) {
		titleA := s.Find(".f_title a").First()
		href, ok := titleA.Attr("href")
		title := strings.TrimSpace(titleA.Text())
		if !ok || href == "" {
			titleA = s.Find(".thumb a").First()
			href, ok = titleA.Attr("href")
		}
		if title == "" {
			title = strings.TrimSpace(s.Find(".thumb").AttrOr("title", ""))
		}
		if !ok || href == "" || title == "" {
			return
		}
		items = append(items, searchItem{title: title, url: href})
	})
	return items, nil
}

func (a *Adapter) scrapeAll(ctx context.Context, items []searchItem, season, episode *int) []domain.RawSearchResult {
	sem := make(chan struct{}, maxConcurrentDoc)
	resultChan := make(chan []domain.RawSearchResult, len(items))

	for _, item := range items {
		sem <- struct{}{}
		go func(it searchItem) {
			defer func() { <-sem }()
			resultChan <- a.scrapeDetail(ctx, it, season, episode)
		}(item)
	}

	var results []domain.RawSearchResult
	for range items {
		results = append(results, <-resultChan...)
	}
	return results
}

func (a *Adapter) scrapeDetail(ctx context.Context, item searchItem, season, episode *int) []domain.RawSearchResult {
	doc, err := a.getDoc(ctx, item.url)
	if err != nil {
		return nil
	}

	title := item.title

	seriesLinks := seriesLinksFrom(doc)
	if len(seriesLinks) > 0 {
		links := narrowToRequestedEpisode(seriesLinks, season, episode)
		if len(links) == 0 {
			return nil
		}
		return []domain.RawSearchResult{{
			Title:       title,
			Category:    domain.CategoryTV,
			PrimaryLink: links[0].URL,
			Links:       links,
		}}
	}

	movieLinks := movieLinksFrom(doc)
	if len(movieLinks) == 0 {
		return nil
	}
	return []domain.RawSearchResult{{
		Title:       title,
		Category:    domain.CategoryMovies,
		PrimaryLink: movieLinks[0].URL,
		Links:       movieLinks,
	}}
}

func movieLinksFrom(doc *goquery.Document) []domain.HosterLink {
	var links []domain.HosterLink
	doc.Find("a.streams").Each(func(_ int, s *goquery.Selection) {
		onclick, _ := s.Attr("onclick")
		m := streamsOnclickRe.FindStringSubmatch(onclick)
		if m == nil {
			return
		}
		hoster := strings.TrimSpace(s.Find("span.streaming").First().Text())
		quality := strings.TrimSpace(s.Find("mark").First().Text())
		size := strings.TrimSpace(s.Find("span").Last().Text())
		links = append(links, domain.HosterLink{
			HosterName: strings.ToLower(hoster),
			URL:        m[1],
			Quality:    quality,
			Size:       size,
		})
	})
	return links
}

// seriesLinksFrom extracts data-link/data-num episode tabs plus
// data-m/data-link mirror links nested in .mirrors, flattened into one
// labelled link list.
func seriesLinksFrom(doc *goquery.Document) []domain.HosterLink {
	var links []domain.HosterLink
	doc.Find("[data-link]").Each(func(_ int, s *goquery.Selection) {
		dataLink, _ := s.Attr("data-link")
		if dataLink == "" {
			return
		}
		full := absoluteURL(dataLink)
		if dataNum, ok := s.Attr("data-num"); ok && dataNum != "" {
			title, _ := s.Attr("data-title")
			label := strings.TrimSpace(dataNum + " " + title)
			links = append(links, domain.HosterLink{
				HosterName: domainFromURL(full),
				URL:        full,
				Label:      label,
			})
			return
		}
		if dataM, ok := s.Attr("data-m"); ok && dataM != "" {
			links = append(links, domain.HosterLink{
				HosterName: strings.ToLower(dataM),
				URL:        full,
				Label:      dataM,
			})
		}
	})
	return links
}

// narrowToRequestedEpisode drops links whose data-num label parses to a
// different season/episode than requested. The site labels episode tabs
// "1x5" (season x episode); links whose label carries no such marker
// are kept, since they may be season packs or mirrors.
func narrowToRequestedEpisode(links []domain.HosterLink, season, episode *int) []domain.HosterLink {
	if season == nil && episode == nil {
		return links
	}
	var out []domain.HosterLink
	for _, l := range links {
		m := episodeLabelRe.FindStringSubmatch(l.Label)
		if m == nil {
			out = append(out, l)
			continue
		}
		s, _ := strconv.Atoi(m[1])
		e, _ := strconv.Atoi(m[2])
		if season != nil && s != *season {
			continue
		}
		if episode != nil && e != *episode {
			continue
		}
		out = append(out, l)
	}
	return out
}

func domainFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "unknown"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	parts := strings.SplitN(host, ".", 2)
	if parts[0] == "" {
		return "unknown"
	}
	return parts[0]
}

func (a *Adapter) getDoc(ctx context.Context, reqURL string) (*goquery.Document, error) {
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
	return goquery.NewDocumentFromReader(resp.Body)
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
