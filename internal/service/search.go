package service

import (
	"context"
	"log/slog"

	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/search"
	"github.com/pantryapp/pantry-server/internal/store"
)

// SearchService fronts the bleve index: querying, document lifecycle,
// full reindexing, and the synonym dictionary.
type SearchService struct {
	store  *store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store *store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// Search runs a recipe query against the index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, apperrors.Internal("search failed").WithCause(err)
	}
	return result, nil
}

// IndexRecipe projects an aggregate and writes its search document.
func (s *SearchService) IndexRecipe(agg *domain.RecipeAggregate) error {
	return s.index.IndexRecipe(search.DocumentFromRecipe(agg))
}

// RemoveRecipe deletes a recipe's search document.
func (s *SearchService) RemoveRecipe(recipeID string) error {
	return s.index.DeleteRecipe(recipeID)
}

// ReindexAll drops the index and rebuilds it from the store, then
// reapplies the synonym dictionary. Returns the number of recipes
// indexed.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	aggs, err := s.store.ListRecipes(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.index.Rebuild(); err != nil {
		return 0, apperrors.Internal("failed to rebuild search index").WithCause(err)
	}

	docs := make([]*search.RecipeDocument, 0, len(aggs))
	for _, agg := range aggs {
		docs = append(docs, search.DocumentFromRecipe(agg))
	}
	if err := s.index.IndexRecipes(docs); err != nil {
		return 0, apperrors.Internal("failed to index recipes").WithCause(err)
	}

	expanded, err := s.store.GetExpandedSynonyms(ctx)
	if err != nil {
		return 0, err
	}
	if len(expanded) > 0 {
		if err := s.index.ApplySynonyms(expanded, nil); err != nil {
			return 0, apperrors.Internal("failed to apply synonyms").WithCause(err)
		}
	}

	s.logger.Info("search index rebuilt", "recipes", len(docs), "synonym_terms", len(expanded))
	return len(docs), nil
}

// RestoreSynonyms reapplies the persisted synonym dictionary to the
// index. Called at startup so a mapping-version rebuild does not lose
// the dictionary.
func (s *SearchService) RestoreSynonyms(ctx context.Context) error {
	expanded, err := s.store.GetExpandedSynonyms(ctx)
	if err != nil {
		return err
	}
	if len(expanded) == 0 {
		return nil
	}
	return s.index.ApplySynonyms(expanded, nil)
}

// GetSynonyms returns the synonym groups as the user authored them.
func (s *SearchService) GetSynonyms(ctx context.Context) (map[string][]string, error) {
	return s.store.GetSynonymGroups(ctx)
}

// UpdateSynonyms replaces the synonym dictionary. Groups are expanded
// to per-term bidirectional definitions before persisting and applying,
// and definitions for terms no longer in any group are removed.
func (s *SearchService) UpdateSynonyms(ctx context.Context, groups map[string][]string) error {
	expanded := search.ExpandSynonymGroups(groups)

	previous, err := s.store.GetExpandedSynonyms(ctx)
	if err != nil {
		return err
	}

	if err := s.store.SaveSynonyms(ctx, groups, expanded); err != nil {
		return err
	}
	if err := s.index.ApplySynonyms(expanded, previous); err != nil {
		return apperrors.Internal("failed to apply synonyms").WithCause(err)
	}

	s.logger.Info("synonyms updated", "groups", len(groups), "terms", len(expanded))
	return nil
}

// DocumentCount returns the number of documents in the index.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
