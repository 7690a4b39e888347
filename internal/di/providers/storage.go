package providers

import (
	"github.com/samber/do/v2"

	"github.com/pantryapp/pantry-server/internal/config"
	"github.com/pantryapp/pantry-server/internal/logger"
	"github.com/pantryapp/pantry-server/internal/media/images"
)

// ProvideImageStorage provides the uploaded-image file storage.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Uploads.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Image storage ready", "path", cfg.Uploads.BasePath)
	return storage, nil
}
