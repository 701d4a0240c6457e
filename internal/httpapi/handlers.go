package httpapi

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/domain"
	"github.com/scavengarr/scavengarr/internal/hoster"
	"github.com/scavengarr/scavengarr/internal/metadata/tmdb"
	"github.com/scavengarr/scavengarr/internal/stremiotypes"
	"github.com/scavengarr/scavengarr/internal/torznab"
)

func (s *Server) manifestHandler(c *fiber.Ctx) error {
	return c.JSON(s.manifest)
}

// catalogHandler backs the browseable catalog: trending when id has no
// search extra, otherwise a TMDB text search. This is metadata
// browsing, not stream resolution, so it never enters the pipeline.
func (s *Server) catalogHandler(c *fiber.Ctx) error {
	if s.catalog == nil {
		return c.JSON(stremiotypes.CatalogResponse{Metas: []stremiotypes.MetaPreviewItem{}})
	}

	kind := domain.Kind(c.Params("type"))
	search := c.Query("search")

	var (
		entries []tmdb.CatalogEntry
		err     error
	)
	switch {
	case search != "" && kind == domain.KindSeries:
		entries, err = s.catalog.SearchTV(c.Context(), search)
	case search != "":
		entries, err = s.catalog.SearchMovies(c.Context(), search)
	case kind == domain.KindSeries:
		entries, err = s.catalog.TrendingTV(c.Context())
	default:
		entries, err = s.catalog.TrendingMovies(c.Context())
	}
	if err != nil {
		s.logger.Debug("catalog lookup failed, returning empty metas", zap.Error(err))
		return c.JSON(stremiotypes.CatalogResponse{Metas: []stremiotypes.MetaPreviewItem{}})
	}

	metas := make([]stremiotypes.MetaPreviewItem, 0, len(entries))
	for _, e := range entries {
		releaseInfo := ""
		if e.Year > 0 {
			releaseInfo = strconv.Itoa(e.Year)
		}
		metas = append(metas, stremiotypes.MetaPreviewItem{
			ID:          "tmdb:" + strconv.Itoa(e.TMDBID),
			Type:        string(kind),
			Name:        e.Title,
			Poster:      e.PosterURL(),
			ReleaseInfo: releaseInfo,
		})
	}
	return c.JSON(stremiotypes.CatalogResponse{Metas: metas})
}

// streamHandler is the Stremio stream endpoint: parses the
// /stream/:type/:id.json content id (an IMDb id, optionally suffixed
// with :season:episode for series, per the Stremio addon protocol)
// into a domain.StreamRequest and runs the full pipeline.
func (s *Server) streamHandler(c *fiber.Ctx) error {
	kind := domain.Kind(c.Params("type"))
	rawID := strings.TrimSuffix(c.Params("id"), ".json")

	req, ok := parseStreamID(rawID, kind)
	if !ok {
		return c.JSON(stremiotypes.StreamResponse{Streams: []stremiotypes.StreamItem{}})
	}

	clientStreams := s.orch.ResolveStreams(c.Context(), req)
	return c.JSON(stremiotypes.StreamResponse{Streams: toStreamItems(clientStreams)})
}

// parseStreamID splits a Stremio content id of the form "tt1234567" or
// "tt1234567:1:2" (season:episode) into a StreamRequest. A bare tmdb:<id>
// id is also accepted.
func parseStreamID(id string, kind domain.Kind) (domain.StreamRequest, bool) {
	if id == "" {
		return domain.StreamRequest{}, false
	}
	parts := strings.Split(id, ":")
	req := domain.StreamRequest{ExternalID: parts[0], Kind: kind}
	if parts[0] == "tmdb" && len(parts) > 1 {
		req.ExternalID = "tmdb:" + parts[1]
		parts = parts[1:]
	}
	if kind == domain.KindSeries && len(parts) == 3 {
		season, errS := strconv.Atoi(parts[1])
		episode, errE := strconv.Atoi(parts[2])
		if errS != nil || errE != nil {
			return domain.StreamRequest{}, false
		}
		req.Season = &season
		req.Episode = &episode
	}
	return req, true
}

func toStreamItems(streams []domain.ClientStream) []stremiotypes.StreamItem {
	items := make([]stremiotypes.StreamItem, 0, len(streams))
	for _, cs := range streams {
		items = append(items, stremiotypes.StreamItem{
			URL:           cs.URL,
			Title:         cs.Description,
			Name:          cs.DisplayName,
			BehaviorHints: behaviorHintsFrom(cs.BehaviorHints),
		})
	}
	return items
}

func behaviorHintsFrom(hints *domain.BehaviorHints) *stremiotypes.BehaviorHints {
	if hints == nil {
		return nil
	}
	out := &stremiotypes.BehaviorHints{
		NotWebReady: hints.NotWebReady,
		BingeGroup:  hints.BingeGroup,
	}
	if hints.ProxyHeaders != nil {
		out.ProxyHeaders = &stremiotypes.ProxyHeaders{Request: hints.ProxyHeaders.Request}
	}
	return out
}

// torznabHandler implements the Torznab search surface: caps requests
// are answered from the static capabilities, search/tv-search/
// movie-search requests run SearchRaw and render a Torznab RSS feed.
// On upstream failure, dev mode returns 502 with the error; prod hides
// the failure behind an empty 200 feed.
func (s *Server) torznabHandler(c *fiber.Ctx) error {
	if c.Query("t") == "caps" {
		return sendXML(c, s.caps)
	}

	text := c.Query("q")
	category := categoryFromQuery(c.Query("cat"))
	season := intQueryPtr(c, "season")
	episode := intQueryPtr(c, "ep")

	results, err := s.orch.SearchRaw(c.Context(), text, category, season, episode)
	if err != nil {
		s.logger.Debug("torznab search failed", zap.Error(err))
		if s.devMode {
			return c.Status(fiber.StatusBadGateway).SendString(err.Error())
		}
		results = nil
	}

	feed := torznab.BuildFeed(s.caps.Server.Title, results)
	return sendXML(c, feed)
}

func sendXML(c *fiber.Ctx, v interface{}) error {
	body, err := xml.Marshal(v)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXML)
	return c.SendString(xml.Header + string(body))
}

func categoryFromQuery(raw string) domain.TorznabCategory {
	if raw == "" {
		return domain.CategoryMovies
	}
	n, err := strconv.Atoi(strings.SplitN(raw, ",", 2)[0])
	if err != nil {
		return domain.CategoryMovies
	}
	return domain.TorznabCategory(n)
}

func intQueryPtr(c *fiber.Ctx, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// playHandler resolves a previously minted stream-link opaque id back
// to a live URL and redirects the client to it. Missing cache entry is
// 404, no resolver registered for the cached hoster is 503, and a
// resolver that runs but fails (or echoes) is 502.
func (s *Server) playHandler(c *fiber.Ctx) error {
	id := c.Params("id")
	link, ok := s.links.Get(c.Context(), id)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if s.hosters == nil || !s.hosters.Has(link.Hoster) {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	resolved, err := s.hosters.Resolve(c.Context(), link.EmbedURL, link.Hoster)
	if err != nil || !hoster.IsPlayable(link.EmbedURL, resolved) {
		s.logger.Debug("play redirect resolution failed", zap.String("id", id), zap.Error(err))
		return c.SendStatus(fiber.StatusBadGateway)
	}
	return c.Redirect(resolved.VideoURL, fiber.StatusFound)
}
