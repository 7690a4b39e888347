package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerImageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "reorderImages",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipes/{id}/images/order",
		Summary:     "Reorder images",
		Description: "Replaces the image order; images left out of the list are deleted",
		Tags:        []string{"Images"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReorderImages)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteImage",
		Method:      http.MethodDelete,
		Path:        "/api/v1/recipes/{id}/images/{imageId}",
		Summary:     "Delete image",
		Description: "Deletes one image from a recipe",
		Tags:        []string{"Images"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteImage)
}

// === DTOs ===

// ReorderImagesRequest is the request body for reordering images.
type ReorderImagesRequest struct {
	ImageIDs []string `json:"image_ids" validate:"required" doc:"Image IDs in the desired order"`
}

// ReorderImagesInput wraps the reorder request for Huma.
type ReorderImagesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
	Body          ReorderImagesRequest
}

// ImagesResponse contains the resulting image list.
type ImagesResponse struct {
	Images []RecipeImageResponse `json:"images" doc:"Images in their new order"`
}

// ImagesOutput wraps the images response for Huma.
type ImagesOutput struct {
	Body ImagesResponse
}

// DeleteImageInput contains parameters for deleting an image.
type DeleteImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
	ImageID       string `path:"imageId" doc:"Image ID"`
}

// === Handlers ===

func (s *Server) handleReorderImages(ctx context.Context, input *ReorderImagesInput) (*ImagesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	images, err := s.services.Images.Reorder(ctx, input.ID, input.Body.ImageIDs)
	if err != nil {
		return nil, err
	}

	resp := make([]RecipeImageResponse, len(images))
	for i := range images {
		resp[i] = imageResponse(&images[i])
	}

	return &ImagesOutput{Body: ImagesResponse{Images: resp}}, nil
}

func (s *Server) handleDeleteImage(ctx context.Context, input *DeleteImageInput) (*struct{}, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Images.Delete(ctx, input.ID, input.ImageID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}
