package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/media/images"
	"github.com/pantryapp/pantry-server/internal/store"
	"github.com/pantryapp/pantry-server/internal/validation"
)

// Archive layout: one recipe.json manifest plus the image binaries
// under images/. A batch archive nests complete archives as .zip
// entries, or is itself a single archive when recipe.json sits at the
// root.
const (
	manifestName   = "recipe.json"
	archiveVersion = "1.0"
	imageEntryDir  = "images"
)

// Manifest is the recipe.json payload.
type Manifest struct {
	Version string         `json:"version"`
	Recipe  ManifestRecipe `json:"recipe"`
}

// ManifestRecipe is the portable recipe shape: everything by value or by
// name, no ids, so an archive imports cleanly into any instance.
type ManifestRecipe struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Steps       string         `json:"steps"`
	Tips        string         `json:"tips"`
	Images      []string       `json:"images"`
	Ingredients []ManifestLine `json:"ingredients"`
	Tags        []string       `json:"tags"`
}

// ManifestLine is one ingredient line: resolved by exact name on import.
type ManifestLine struct {
	Name     string `json:"name" validate:"required"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
}

// BatchImportResult reports which inner archives imported successfully.
type BatchImportResult struct {
	ImportedIDs []string `json:"imported_ids"`
	Count       int      `json:"count"`
}

// ArchiveService serializes recipes to portable zip archives and
// reconstructs them on import.
type ArchiveService struct {
	store     *store.Store
	storage   *images.Storage
	search    *SearchService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewArchiveService creates a new archive service.
func NewArchiveService(store *store.Store, storage *images.Storage, search *SearchService, validator *validation.Validator, logger *slog.Logger) *ArchiveService {
	return &ArchiveService{
		store:     store,
		storage:   storage,
		search:    search,
		validator: validator,
		logger:    logger,
	}
}

// Export writes a recipe's archive to w. The manifest lists every image
// the database knows by its images/ entry path; binaries whose backing
// file is gone from disk are skipped but stay listed, so the manifest
// remains a faithful inventory of the recipe row.
func (s *ArchiveService) Export(ctx context.Context, recipeID string, w io.Writer) error {
	agg, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	if err := s.writeArchive(zw, agg); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// writeArchive writes one recipe's manifest and image binaries into an
// open zip writer.
func (s *ArchiveService) writeArchive(zw *zip.Writer, agg *domain.RecipeAggregate) error {
	manifest := manifestFromAggregate(agg)

	mw, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if _, err := mw.Write(data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	for _, img := range agg.Images {
		content, err := s.storage.Get(img.ImagePath)
		if err != nil {
			s.logger.Warn("image file missing, skipped from archive", "recipe_id", agg.ID, "path", img.ImagePath)
			continue
		}
		ew, err := zw.Create(path.Join(imageEntryDir, path.Base(img.ImagePath)))
		if err != nil {
			return fmt.Errorf("failed to create image entry: %w", err)
		}
		if _, err := ew.Write(content); err != nil {
			return fmt.Errorf("failed to write image entry: %w", err)
		}
	}
	return nil
}

// manifestFromAggregate projects a hydrated recipe to its portable form.
func manifestFromAggregate(agg *domain.RecipeAggregate) *Manifest {
	m := &Manifest{
		Version: archiveVersion,
		Recipe: ManifestRecipe{
			Name:        agg.Name,
			Description: agg.Description,
			Steps:       agg.Steps,
			Tips:        agg.Tips,
			Images:      []string{},
			Ingredients: []ManifestLine{},
			Tags:        agg.TagNames(),
		},
	}
	if m.Recipe.Tags == nil {
		m.Recipe.Tags = []string{}
	}
	for _, img := range agg.Images {
		m.Recipe.Images = append(m.Recipe.Images, path.Join(imageEntryDir, path.Base(img.ImagePath)))
	}
	for i := range agg.Ingredients {
		line := &agg.Ingredients[i]
		m.Recipe.Ingredients = append(m.Recipe.Ingredients, ManifestLine{
			Name:     line.Name,
			Amount:   line.Amount,
			Category: line.Category,
		})
	}
	return m
}

// Import reconstructs a recipe from archive bytes. Tags, ingredients,
// and categories are resolved or created by exact name; image binaries
// are extracted to fresh filenames before the database transaction, and
// removed again if it fails.
func (s *ArchiveService) Import(ctx context.Context, data []byte) (*domain.RecipeAggregate, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.InvalidFormat("cannot open archive").WithCause(err)
	}
	return s.importArchive(ctx, zr)
}

func (s *ArchiveService) importArchive(ctx context.Context, zr *zip.Reader) (*domain.RecipeAggregate, error) {
	manifest, err := s.readManifest(zr)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	// Extract binaries first. sort_order is assigned only to images
	// whose entry actually exists, in manifest order.
	var extracted []string
	cleanup := func() {
		for _, p := range extracted {
			if err := s.storage.Delete(p); err != nil {
				s.logger.Warn("failed to remove extracted image", "path", p, "error", err)
			}
		}
	}

	var imagePaths []string
	for _, listed := range manifest.Recipe.Images {
		entry, ok := entries[path.Join(imageEntryDir, path.Base(listed))]
		if !ok {
			s.logger.Warn("archive lists image without a binary entry, skipped", "path", listed)
			continue
		}
		content, err := readZipEntry(entry)
		if err != nil {
			cleanup()
			return nil, apperrors.InvalidFormat("cannot read image entry").WithCause(err)
		}
		stored, err := s.storage.Save(content, path.Ext(listed))
		if err != nil {
			cleanup()
			return nil, apperrors.Internal("failed to store imported image").WithCause(err)
		}
		extracted = append(extracted, stored)
		imagePaths = append(imagePaths, path.Join(uploadDir, stored))
	}

	input := store.ImportRecipeInput{
		Name:        manifest.Recipe.Name,
		Description: manifest.Recipe.Description,
		Steps:       manifest.Recipe.Steps,
		Tips:        manifest.Recipe.Tips,
		Tags:        manifest.Recipe.Tags,
		ImagePaths:  imagePaths,
	}
	for _, line := range manifest.Recipe.Ingredients {
		input.Ingredients = append(input.Ingredients, store.ImportLine{
			Name:     line.Name,
			Amount:   line.Amount,
			Category: line.Category,
		})
	}

	agg, err := s.store.ImportRecipe(ctx, input)
	if err != nil {
		cleanup()
		return nil, err
	}

	s.logger.Info("recipe imported", "id", agg.ID, "name", agg.Name, "images", len(imagePaths))
	s.syncSearch(agg)
	return agg, nil
}

// readManifest locates and parses recipe.json at the archive root.
func (s *ArchiveService) readManifest(zr *zip.Reader) (*Manifest, error) {
	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == manifestName {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, apperrors.Validation("archive has no recipe.json manifest")
	}

	data, err := readZipEntry(entry)
	if err != nil {
		return nil, apperrors.InvalidFormat("cannot read manifest entry").WithCause(err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, apperrors.Validation("manifest is not valid JSON").WithCause(err)
	}
	if err := s.validator.Validate(&manifest.Recipe); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// ExportBatch writes one outer zip holding a complete inner archive per
// recipe. Missing ids are skipped. Inner archives are named from the
// sanitized recipe name, falling back to the id when the name sanitizes
// to nothing or collides.
func (s *ArchiveService) ExportBatch(ctx context.Context, recipeIDs []string, w io.Writer) error {
	zw := zip.NewWriter(w)

	used := make(map[string]bool)
	exported := 0
	for _, recipeID := range recipeIDs {
		agg, err := s.store.GetRecipe(ctx, recipeID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				s.logger.Warn("recipe missing, skipped from batch export", "id", recipeID)
				continue
			}
			zw.Close()
			return err
		}

		var buf bytes.Buffer
		inner := zip.NewWriter(&buf)
		if err := s.writeArchive(inner, agg); err != nil {
			zw.Close()
			return err
		}
		if err := inner.Close(); err != nil {
			zw.Close()
			return err
		}

		name := sanitizeArchiveName(agg.Name)
		if name == "" || used[name] {
			name = "recipe_" + agg.ID
		}
		used[name] = true

		ew, err := zw.Create(name + ".zip")
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to create batch entry: %w", err)
		}
		if _, err := ew.Write(buf.Bytes()); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write batch entry: %w", err)
		}
		exported++
	}

	s.logger.Info("batch export finished", "requested", len(recipeIDs), "exported", exported)
	return zw.Close()
}

// ImportBatch imports a batch archive. A root recipe.json means the
// whole container is a single archive; otherwise every .zip entry is
// imported independently and a failing entry is logged and skipped.
func (s *ArchiveService) ImportBatch(ctx context.Context, data []byte) (*BatchImportResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.InvalidFormat("cannot open archive").WithCause(err)
	}

	for _, f := range zr.File {
		if f.Name == manifestName {
			agg, err := s.importArchive(ctx, zr)
			if err != nil {
				return nil, err
			}
			return &BatchImportResult{ImportedIDs: []string{agg.ID}, Count: 1}, nil
		}
	}

	result := &BatchImportResult{ImportedIDs: []string{}}
	sawInner := false
	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".zip") {
			continue
		}
		sawInner = true

		content, err := readZipEntry(f)
		if err != nil {
			s.logger.Warn("cannot read batch entry, skipped", "entry", f.Name, "error", err)
			continue
		}
		agg, err := s.Import(ctx, content)
		if err != nil {
			s.logger.Warn("batch entry failed to import, skipped", "entry", f.Name, "error", err)
			continue
		}
		result.ImportedIDs = append(result.ImportedIDs, agg.ID)
	}
	if !sawInner {
		return nil, apperrors.Validation("archive has neither a manifest nor inner archives")
	}

	result.Count = len(result.ImportedIDs)
	s.logger.Info("batch import finished", "imported", result.Count)
	return result, nil
}

// syncSearch indexes an imported recipe, best effort.
func (s *ArchiveService) syncSearch(agg *domain.RecipeAggregate) {
	if s.search == nil {
		return
	}
	go func() {
		if err := s.search.IndexRecipe(agg); err != nil {
			s.logger.Warn("failed to index imported recipe", "id", agg.ID, "error", err)
		}
	}()
}

// readZipEntry reads a zip entry fully into memory.
func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// sanitizeArchiveName strips characters that are unsafe in filenames.
func sanitizeArchiveName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}
