package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	apperrors "github.com/pantryapp/pantry-server/internal/errors"
)

// jpegQuality is the encode quality for normalized uploads.
const jpegQuality = 85

// allowedExtensions are the upload extensions accepted by the API.
// HEIC/HEIF/AVIF are accepted at the boundary for iOS clients but the
// default normalizer has no decoder for them; a custom Normalizer can
// shell out to a converter.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
	".heif": true,
	".avif": true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// AllowedExtension reports whether the filename's extension is an
// accepted upload format. Matching is case-insensitive.
func AllowedExtension(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[idx:])]
}

// Normalizer converts an uploaded image to JPEG bytes. It is the seam
// for plugging in external converters for formats Go can't decode.
type Normalizer interface {
	Normalize(data []byte) ([]byte, error)
}

// JPEGNormalizer decodes with the registered stdlib and x/image
// decoders and re-encodes as JPEG. Undecodable input (corrupt data,
// HEIC, AVIF) yields a validation error.
type JPEGNormalizer struct{}

// Normalize implements Normalizer.
func (JPEGNormalizer) Normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Validation("unsupported or corrupt image data").WithCause(err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
