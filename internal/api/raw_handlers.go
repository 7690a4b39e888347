package api

import (
	"bytes"
	"encoding/json/v2"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/http/response"
)

// maxArchiveBytes caps import uploads. Batch archives carry full-size
// images for many recipes, so this is well above the per-image limit.
const maxArchiveBytes = 100 << 20 // 100MB

// handleUploadImage handles recipe image uploads.
// POST /api/v1/recipes/{id}/images
// Content-Type: multipart/form-data with "file" field
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")

	maxBytes := s.services.Images.MaxBytes()
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		response.Error(w, apperrors.Validation("failed to parse form data"), s.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apperrors.Validation("no file uploaded, use 'file' field in multipart form"), s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		s.logger.Error("failed to read uploaded file", "error", err, "recipe_id", recipeID)
		response.Error(w, apperrors.Internal("failed to read uploaded file"), s.logger)
		return
	}

	img, err := s.services.Images.Upload(r.Context(), recipeID, header.Filename, data)
	if err != nil {
		response.Error(w, err, s.logger)
		return
	}

	resp := imageResponse(img)
	response.Created(w, &resp, s.logger)
}

// handleExportRecipe streams a single recipe as a zip archive.
// GET /api/v1/recipes/{id}/export
func (s *Server) handleExportRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")

	// Buffer the archive so failures still map to a proper error
	// status instead of a truncated download.
	var buf bytes.Buffer
	if err := s.services.Archives.Export(r.Context(), recipeID, &buf); err != nil {
		response.Error(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+recipeID+`.zip"`)
	if _, err := io.Copy(w, &buf); err != nil {
		s.logger.Warn("archive download aborted", "error", err, "recipe_id", recipeID)
	}
}

// handleImportArchive imports a recipe archive or a batch archive.
// POST /api/v1/recipes/import with the zip as the request body.
func (s *Server) handleImportArchive(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArchiveBytes))
	if err != nil {
		response.Error(w, apperrors.Validation("failed to read archive body"), s.logger)
		return
	}

	result, err := s.services.Archives.ImportBatch(r.Context(), data)
	if err != nil {
		response.Error(w, err, s.logger)
		return
	}

	response.Created(w, result, s.logger)
}

// exportBatchRequest is the request body for a batch export.
type exportBatchRequest struct {
	RecipeIDs []string `json:"recipe_ids"`
}

// handleExportBatch streams the selected recipes as a zip of zips.
// POST /api/v1/recipes/export
func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	var req exportBatchRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, apperrors.Validation("invalid request body"), s.logger)
		return
	}
	if len(req.RecipeIDs) == 0 {
		response.Error(w, apperrors.Validation("recipe_ids must not be empty"), s.logger)
		return
	}

	var buf bytes.Buffer
	if err := s.services.Archives.ExportBatch(r.Context(), req.RecipeIDs, &buf); err != nil {
		response.Error(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="recipes.zip"`)
	if _, err := io.Copy(w, &buf); err != nil {
		s.logger.Warn("batch download aborted", "error", err)
	}
}

// handleServeUpload serves stored image files.
// GET /uploads/{filename}
func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "*")

	// Storage resolves by base name only, so ../ tricks can't escape
	// the upload directory.
	if filename == "" || !s.storage.Exists(filename) {
		response.Error(w, apperrors.NotFound("image not found"), s.logger)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, s.storage.Path(filename))
}
