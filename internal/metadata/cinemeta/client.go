// Package cinemeta implements the Cinemeta-backed metadata Source,
// used as the fallback when the primary source errors. Lookups are
// cached in fastcache with a long TTL.
package cinemeta

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/domain"
)

const defaultBaseURL = "https://v3-cinemeta.strem.io"

// Client is the Cinemeta fallback source. cache may be nil, in which
// case every call hits the network.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *fastcache.Cache
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, cache *fastcache.Cache, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
	}
}

// Resolve implements metadata.Source. Cinemeta only speaks IMDb IDs;
// a tmdb:<id> fallback ID has nothing Cinemeta can look up, so Resolve
// errors immediately rather than issuing a request guaranteed to 404.
func (c *Client) Resolve(ctx context.Context, externalID string, kind domain.Kind) (domain.ReferenceTitle, error) {
	if len(externalID) < 2 || externalID[:2] != "tt" {
		return domain.ReferenceTitle{}, fmt.Errorf("cinemeta: not an IMDb ID: %s", externalID)
	}

	cacheKey := string(kind) + ":" + externalID
	if c.cache != nil {
		if cached, ok := c.cache.HasGet(nil, []byte(cacheKey)); ok {
			if title, err := decodeCacheEntry(cached); err == nil {
				return title, nil
			}
		}
	}

	kindPath := "movie"
	if kind == domain.KindSeries {
		kindPath = "series"
	}
	reqURL := fmt.Sprintf("%s/meta/%s/%s.json", c.baseURL, kindPath, externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.ReferenceTitle{}, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ReferenceTitle{}, fmt.Errorf("cinemeta GET %s: %w", reqURL, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return domain.ReferenceTitle{}, fmt.Errorf("cinemeta returned status %d", res.StatusCode)
	}
	resBody, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return domain.ReferenceTitle{}, fmt.Errorf("cinemeta read body: %w", err)
	}

	name := gjson.GetBytes(resBody, "meta.name").String()
	if name == "" {
		return domain.ReferenceTitle{}, fmt.Errorf("cinemeta: no name in response for %s", externalID)
	}
	var year int
	if yearStr := gjson.GetBytes(resBody, "meta.year").String(); yearStr != "" {
		if len(yearStr) > 4 {
			yearStr = yearStr[:4]
		}
		year, _ = strconv.Atoi(yearStr)
	}

	title := domain.ReferenceTitle{Title: name, Year: year, Kind: kind}
	if c.cache != nil {
		if encoded, err := encodeCacheEntry(title); err == nil {
			c.cache.Set([]byte(cacheKey), encoded)
		} else {
			c.logger.Debug("couldn't encode cinemeta cache entry", zap.Error(err))
		}
	}
	return title, nil
}
