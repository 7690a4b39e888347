package service

import (
	"context"
	"log/slog"
	"path"

	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/media/images"
	"github.com/pantryapp/pantry-server/internal/store"
)

// DefaultMaxUploadBytes caps a single image upload when no limit is
// configured. Phone photos stay well under this after JPEG
// normalization.
const DefaultMaxUploadBytes = 10 << 20

// uploadDir is the path prefix stored with each image row. Files live
// flat under the storage base; the prefix keeps stored paths stable if
// the base directory ever moves.
const uploadDir = "uploads"

// ImageService runs the upload pipeline and keeps image rows and files
// in step.
type ImageService struct {
	store      *store.Store
	storage    *images.Storage
	normalizer images.Normalizer
	maxBytes   int64
	logger     *slog.Logger
}

// NewImageService creates a new image service. maxBytes caps a single
// upload; zero or negative falls back to DefaultMaxUploadBytes.
func NewImageService(store *store.Store, storage *images.Storage, normalizer images.Normalizer, maxBytes int64, logger *slog.Logger) *ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ImageService{
		store:      store,
		storage:    storage,
		normalizer: normalizer,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// MaxBytes reports the upload size limit, for the HTTP layer to bound
// multipart reads before they reach the service.
func (s *ImageService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload validates, normalizes, and stores an uploaded image, then
// appends it to the recipe's gallery. The stored file is removed again
// if the database write fails.
func (s *ImageService) Upload(ctx context.Context, recipeID, filename string, data []byte) (*domain.RecipeImage, error) {
	if !images.AllowedExtension(filename) {
		return nil, apperrors.Validationf("unsupported image type %q", path.Ext(filename))
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("empty upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperrors.Validationf("image exceeds %d byte limit", s.maxBytes)
	}

	normalized, err := s.normalizer.Normalize(data)
	if err != nil {
		return nil, err
	}

	blurHash, err := images.ComputeBlurHash(normalized)
	if err != nil {
		s.logger.Warn("failed to compute blurhash", "recipe_id", recipeID, "error", err)
		blurHash = ""
	}

	stored, err := s.storage.Save(normalized, ".jpg")
	if err != nil {
		return nil, apperrors.Internal("failed to store image").WithCause(err)
	}

	img, err := s.store.AddRecipeImage(ctx, recipeID, path.Join(uploadDir, stored), blurHash)
	if err != nil {
		if delErr := s.storage.Delete(stored); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "file", stored, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("image uploaded", "recipe_id", recipeID, "image_id", img.ID, "bytes", len(normalized))
	return img, nil
}

// Reorder applies a new gallery order. Images absent from the list are
// deleted, rows and files both; remaining images get dense zero-based
// sort orders in list order.
func (s *ImageService) Reorder(ctx context.Context, recipeID string, imageIDs []string) ([]domain.RecipeImage, error) {
	removedPaths, err := s.store.ReorderRecipeImages(ctx, recipeID, imageIDs)
	if err != nil {
		return nil, err
	}
	s.deleteFiles(recipeID, removedPaths)

	agg, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return agg.Images, nil
}

// Delete removes a single image, row and file.
func (s *ImageService) Delete(ctx context.Context, recipeID, imageID string) error {
	imagePath, err := s.store.DeleteRecipeImage(ctx, recipeID, imageID)
	if err != nil {
		return err
	}
	s.deleteFiles(recipeID, []string{imagePath})

	s.logger.Info("image deleted", "recipe_id", recipeID, "image_id", imageID)
	return nil
}

// deleteFiles removes image files, logging rather than failing: the
// rows are already gone, so a leftover file is an orphan, not an error
// the client can act on.
func (s *ImageService) deleteFiles(recipeID string, paths []string) {
	for _, p := range paths {
		if err := s.storage.Delete(p); err != nil {
			s.logger.Warn("failed to delete image file", "recipe_id", recipeID, "path", p, "error", err)
		}
	}
}
