package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/momandme/tailorshop-api/utils"
)

// localRefPrefix is the URL path under which locally stored photos are
// served, see controllers.GetUploadedImage.
const localRefPrefix = "/api/uploads/"

// LocalImageService stores customer photos on the local filesystem. It is
// the development fallback used when no S3 bucket is configured; references
// are paths under /api/uploads served by this API.
type LocalImageService struct {
	uploadDir string
}

// NewLocalImageService creates an image service writing into uploadDir.
func NewLocalImageService(uploadDir string) *LocalImageService {
	return &LocalImageService{uploadDir: uploadDir}
}

// UploadImage validates the photo and saves it to the upload directory.
func (s *LocalImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return localRefPrefix + filename, nil
}

// DeleteImage removes the saved file behind a local reference. A missing
// file is not an error; the reference is already gone.
func (s *LocalImageService) DeleteImage(ref string) error {
	if !strings.HasPrefix(ref, localRefPrefix) {
		return nil
	}

	filename := filepath.Base(strings.TrimPrefix(ref, localRefPrefix))
	if filename == "." || filename == ".." || filename == "/" {
		return nil
	}

	if err := os.Remove(filepath.Join(s.uploadDir, filename)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("local image already removed: %s", filename)
			return nil
		}
		return fmt.Errorf("failed to delete local image: %w", err)
	}
	return nil
}
