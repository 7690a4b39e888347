package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/pantryapp/pantry-server/internal/config"
	"github.com/pantryapp/pantry-server/internal/logger"
	"github.com/pantryapp/pantry-server/internal/search"
	"github.com/pantryapp/pantry-server/internal/service"
)

// SearchIndexHandle wraps the search index for lifecycle management.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexPath := filepath.Join(cfg.Data.BasePath, "search")
	index, err := search.NewSearchIndex(search.Options{
		DataPath: indexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Search index opened", "path", indexPath)
	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// SyncSearchAtStartup restores synonyms into the index and reindexes
// everything when the index came up empty (fresh or rebuilt after a
// mapping change).
func SyncSearchAtStartup(i do.Injector) {
	log := do.MustInvoke[*logger.Logger](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	ctx := context.Background()

	count, err := searchService.DocumentCount()
	if err != nil {
		log.Error("Failed to read search document count", "error", err)
		return
	}
	if count > 0 {
		if err := searchService.RestoreSynonyms(ctx); err != nil {
			log.Error("Failed to restore search synonyms", "error", err)
		}
		return
	}

	indexed, err := searchService.ReindexAll(ctx)
	if err != nil {
		log.Error("Failed to reindex recipes at startup", "error", err)
		return
	}
	if indexed > 0 {
		log.Info("Search index rebuilt", "recipes", indexed)
	}
}
