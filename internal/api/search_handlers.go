package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pantryapp/pantry-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search recipes",
		Description: "Full-text search over recipe names, tags, and main ingredients",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSynonyms",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/synonyms",
		Summary:     "Get synonym groups",
		Description: "Returns the configured synonym groups",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSynonyms)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSynonyms",
		Method:      http.MethodPut,
		Path:        "/api/v1/search/synonyms",
		Summary:     "Replace synonym groups",
		Description: "Replaces the synonym groups and reapplies them to the index",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateSynonyms)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Rebuilds the search index from all stored recipes",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindex)
}

// === DTOs ===

// SearchInput contains search query parameters.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query; empty matches everything"`
	Tag           string `query:"tag" doc:"Exact tag name filter"`
	Limit         int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size, default 20"`
	Offset        int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// SearchHit is a single matched recipe.
type SearchHit struct {
	ID    string  `json:"id" doc:"Recipe ID"`
	Name  string  `json:"name" doc:"Recipe name"`
	Score float64 `json:"score" doc:"Relevance score"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string      `json:"query" doc:"The executed query"`
	Total  uint64      `json:"total" doc:"Total matching recipes"`
	TookMs int64       `json:"took_ms" doc:"Query duration in milliseconds"`
	Hits   []SearchHit `json:"hits" doc:"Matched recipes"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// GetSynonymsInput contains parameters for reading synonym groups.
type GetSynonymsInput struct {
	Authorization string `header:"Authorization"`
}

// SynonymsResponse contains synonym groups keyed by group name.
type SynonymsResponse struct {
	Groups map[string][]string `json:"groups" doc:"Synonym groups, e.g. {\"tomato\": [\"tomato\", \"tomatoes\"]}"`
}

// SynonymsOutput wraps the synonyms response for Huma.
type SynonymsOutput struct {
	Body SynonymsResponse
}

// UpdateSynonymsInput wraps the replacement synonym groups for Huma.
type UpdateSynonymsInput struct {
	Authorization string `header:"Authorization"`
	Body          SynonymsResponse
}

// ReindexInput contains parameters for rebuilding the index.
type ReindexInput struct {
	Authorization string `header:"Authorization"`
}

// ReindexResponse reports how many recipes were indexed.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Number of recipes indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Tag = input.Tag
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHit{ID: h.ID, Name: h.Name, Score: h.Score}
	}

	return &SearchOutput{
		Body: SearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}

func (s *Server) handleGetSynonyms(ctx context.Context, input *GetSynonymsInput) (*SynonymsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	groups, err := s.services.Search.GetSynonyms(ctx)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = map[string][]string{}
	}

	return &SynonymsOutput{Body: SynonymsResponse{Groups: groups}}, nil
}

func (s *Server) handleUpdateSynonyms(ctx context.Context, input *UpdateSynonymsInput) (*SynonymsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Search.UpdateSynonyms(ctx, input.Body.Groups); err != nil {
		return nil, err
	}

	return &SynonymsOutput{Body: SynonymsResponse{Groups: input.Body.Groups}}, nil
}

func (s *Server) handleReindex(ctx context.Context, input *ReindexInput) (*ReindexOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	count, err := s.services.Search.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ReindexOutput{Body: ReindexResponse{Indexed: count}}, nil
}
