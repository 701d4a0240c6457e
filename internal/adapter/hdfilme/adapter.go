// Package hdfilme implements the Adapter interface for hdfilme.legal, a
// German DLE-CMS streaming site. The search page is scraped with
// goquery; matching detail pages are visited concurrently, and the
// meinecloud.click/ddl/{imdb_id} script provides the hoster links.
package hdfilme

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/scavengarr/scavengarr/internal/domain"
)

const (
	name             = "hdfilme"
	baseURL          = "https://hdfilme.legal"
	meinecloudBase   = "https://meinecloud.click"
	maxConcurrentDoc = 3
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var (
	meinecloudScriptRe = regexp.MustCompile(`meinecloud\.click/ddl/(tt\d+)`)
	windowOpenRe       = regexp.MustCompile(`window\.open\(\s*\\?['"]([^'"\\]+)\\?['"]\s*\)`)
	hosterNameRe       = regexp.MustCompile(`class=\\?"streaming\\?"[^>]*>([^<]+)<`)
	qualityMarkRe      = regexp.MustCompile(`<mark[^>]*>([^<]+)<`)
	sizeSpanRe         = regexp.MustCompile(`color:#999[^>]*>([^<]+)<`)
)

// Adapter scrapes hdfilme.legal for stream links.
type Adapter struct {
	httpClient *http.Client
}

func New() *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *Adapter) Name() string                    { return name }
func (a *Adapter) Provides() domain.Provides       { return domain.ProvidesStream }
func (a *Adapter) Kind() domain.AdapterKind        { return domain.AdapterCheap }
func (a *Adapter) DefaultLanguage() string         { return "de" }
func (a *Adapter) CacheTTL() (time.Duration, bool) { return 0, false }

// Search implements adapter.Adapter. It fetches the search page, then
// visits each matched detail page (bounded concurrency) to collect
// stream links: direct meinecloud.click links for films, embedded
// su-spoiler-content hoster links for series.
func (a *Adapter) Search(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
	items, err := a.searchPage(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: hdfilme search: %v", domain.ErrAdapterFailure, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return a.scrapeAll(ctx, items), nil
}

type searchItem struct {
	title string
	url   string
}

func (a *Adapter) searchPage(ctx context.Context, query string) ([]searchItem, error) {
	reqURL := baseURL + "/?story=" + url.QueryEscape(query) + "&do=search&subaction=search"
	doc, err := a.getDoc(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	var items []searchItem
	doc.Find(".item").Each(func(_ int, s *goquery.Selection) {
		titleA := s.Find("a.movie-title").First()
		href, ok := titleA.Attr("href")
		title := strings.TrimSpace(titleA.Text())
		if !ok || href == "" || title == "" {
			return
		}
		items = append(items, searchItem{title: title, url: absoluteURL(href)})
	})
	return items, nil
}

func (a *Adapter) scrapeAll(ctx context.Context, items []searchItem) []domain.RawSearchResult {
	sem := make(chan struct{}, maxConcurrentDoc)
	resultChan := make(chan []domain.RawSearchResult, len(items))

	for _, item := range items {
		sem <- struct{}{}
		go func(it searchItem) {
			defer func() { <-sem }()
			resultChan <- a.scrapeDetail(ctx, it)
		}(item)
	}

	var results []domain.RawSearchResult
	for range items {
		results = append(results, <-resultChan...)
	}
	return results
}

func (a *Adapter) scrapeDetail(ctx context.Context, item searchItem) []domain.RawSearchResult {
	doc, err := a.getDoc(ctx, item.url)
	if err != nil {
		return nil
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	title = strings.TrimSuffix(strings.TrimSuffix(title, " hdfilme"), " Hdfilme")
	if title == "" {
		title = item.title
	}

	var genres []string
	isSeries := false
	doc.Find(".info a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		genres = append(genres, text)
		if strings.Contains(href, "/serien/") {
			isSeries = true
		}
	})
	if doc.Find(".su-spoiler-content").Length() > 0 {
		isSeries = true
	}

	category := domain.CategoryMovies
	if isSeries {
		category = domain.CategoryTV
	}

	if isSeries {
		return a.buildSeriesResult(title, doc, item.url, category)
	}
	return a.buildFilmResult(ctx, title, doc, item.url, category)
}

func (a *Adapter) buildSeriesResult(title string, doc *goquery.Document, sourceURL string, category domain.TorznabCategory) []domain.RawSearchResult {
	var links []domain.HosterLink
	doc.Find(".su-spoiler-content a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		hoster := strings.TrimSpace(s.Text())
		if !ok || href == "" || hoster == "" || strings.Contains(href, "/engine/player.php") {
			return
		}
		links = append(links, domain.HosterLink{
			HosterName: strings.ToLower(strings.SplitN(hoster, ".", 2)[0]),
			URL:        absoluteURL(href),
			Label:      seasonLabelNear(s),
		})
	})
	if len(links) == 0 {
		return nil
	}
	return []domain.RawSearchResult{{
		Title:       title,
		Category:    category,
		PrimaryLink: links[0].URL,
		Links:       links,
	}}
}

func seasonLabelNear(s *goquery.Selection) string {
	label := strings.TrimSpace(s.Closest(".su-spoiler").Find(".su-spoiler-title").First().Text())
	return label
}

func (a *Adapter) buildFilmResult(ctx context.Context, title string, doc *goquery.Document, sourceURL string, category domain.TorznabCategory) []domain.RawSearchResult {
	html, err := doc.Html()
	if err != nil {
		return nil
	}
	m := meinecloudScriptRe.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	imdbID := m[1]

	links := a.fetchMeinecloudLinks(ctx, imdbID)
	if len(links) == 0 {
		return nil
	}
	return []domain.RawSearchResult{{
		Title:       title,
		Category:    category,
		PrimaryLink: links[0].URL,
		Links:       links,
		Metadata:    map[string]string{"imdb_id": imdbID},
	}}
}

func (a *Adapter) fetchMeinecloudLinks(ctx context.Context, imdbID string) []domain.HosterLink {
	reqURL := meinecloudBase + "/ddl/" + imdbID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return parseMeinecloudScript(string(body))
}

func parseMeinecloudScript(script string) []domain.HosterLink {
	var links []domain.HosterLink
	matches := windowOpenRe.FindAllStringSubmatchIndex(script, -1)
	for _, idx := range matches {
		linkURL := script[idx[2]:idx[3]]
		if !strings.HasPrefix(linkURL, "http") {
			continue
		}
		end := idx[1] + 500
		if end > len(script) {
			end = len(script)
		}
		following := script[idx[1]:end]

		hoster := ""
		if hm := hosterNameRe.FindStringSubmatch(following); hm != nil {
			hoster = strings.TrimSpace(hm[1])
		} else if u, err := url.Parse(linkURL); err == nil {
			hoster = strings.SplitN(u.Host, ".", 2)[0]
		}

		quality := ""
		if qm := qualityMarkRe.FindStringSubmatch(following); qm != nil {
			quality = strings.TrimSpace(qm[1])
		}

		size := ""
		if sm := sizeSpanRe.FindStringSubmatch(following); sm != nil {
			size = strings.TrimSpace(sm[1])
		}

		links = append(links, domain.HosterLink{
			HosterName: strings.ToLower(strings.SplitN(hoster, ".", 2)[0]),
			URL:        linkURL,
			Quality:    quality,
			Size:       size,
		})
	}
	return links
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
