package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/raine/recipe-suggester/internal/llm"
)

// MaxImageSize is the largest accepted upload (10MB).
const MaxImageSize = 10 * 1024 * 1024

// AllowedExtensions are the accepted upload file extensions.
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

var allowedMIMETypes = []string{"image/jpeg", "image/png"}

// ErrInvalidImage is returned for uploads that are not a usable JPEG or PNG.
var ErrInvalidImage = errors.New("invalid image")

// NewUpload validates an uploaded file by name and content.
func NewUpload(filename string, data []byte) (llm.Image, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !slices.Contains(AllowedExtensions, ext) {
		return llm.Image{}, fmt.Errorf("%w: file type %q not allowed, use one of %s", ErrInvalidImage, ext, strings.Join(AllowedExtensions, ", "))
	}
	return DecodeImage(data)
}

// DecodeImage sniffs the content type of data and checks that the image
// header decodes.
func DecodeImage(data []byte) (llm.Image, error) {
	if len(data) == 0 {
		return llm.Image{}, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if len(data) > MaxImageSize {
		return llm.Image{}, fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrInvalidImage, len(data), MaxImageSize)
	}

	mtype := mimetype.Detect(data)
	mimeType := strings.Split(mtype.String(), ";")[0]
	if !slices.Contains(allowedMIMETypes, mimeType) {
		return llm.Image{}, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, mtype.String())
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return llm.Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return llm.Image{Data: data, MIMEType: mimeType}, nil
}
