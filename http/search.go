package http

import (
	"strings"

	"github.com/fwojciec/pilot"
	"github.com/gofiber/fiber/v2"
)

// SearchResponse is the body of a search. Query and Count are omitted for
// queries too short to search.
type SearchResponse struct {
	Query   string               `json:"query,omitempty"`
	Count   *int                 `json:"count,omitempty"`
	Results []pilot.SearchResult `json:"results"`
}

// Search runs a search and shapes its response. Responses with results are
// cached up to the cache size; the studies never change while the server
// runs.
func (s *Server) Search(query, version string) (*SearchResponse, error) {
	if len([]rune(strings.TrimSpace(query))) < pilot.MinQueryLength {
		return &SearchResponse{Results: []pilot.SearchResult{}}, nil
	}

	key := version + "\x00" + strings.ToLower(strings.TrimSpace(query))
	if v, ok := s.cache.Get(key); ok {
		cached := *v.(*SearchResponse)
		cached.Query = query
		return &cached, nil
	}

	results, err := s.Index.Search(query, version)
	if err != nil {
		return nil, err
	}

	count := len(results)
	resp := &SearchResponse{Query: query, Count: &count, Results: results}
	if count > 0 && s.cache.ItemCount() < s.cacheSize {
		s.cache.SetDefault(key, resp)
	}
	return resp, nil
}

// handleSearch handles GET /api/search?q=&version=.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	resp, err := s.Search(c.Query("q"), c.Query("version"))
	if err != nil {
		return s.Error(c, err)
	}
	return c.JSON(resp)
}
