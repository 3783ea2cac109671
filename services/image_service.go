package services

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/momandme/tailorshop-api/utils"
)

// ImageService is the storage seam for customer photos. Orders hold the
// reference strings it returns as opaque values; only the ImageService that
// produced a reference knows how to remove the underlying file.
type ImageService interface {
	// UploadImage validates and stores a photo, returning its reference
	UploadImage(fileHeader *multipart.FileHeader) (string, error)

	// DeleteImage removes the stored file behind a reference
	DeleteImage(ref string) error
}

var imageServiceInstance ImageService

// InitImageService sets the active image storage backend.
func InitImageService(service ImageService) ImageService {
	imageServiceInstance = service
	return imageServiceInstance
}

// GetImageService returns the active image storage backend.
func GetImageService() ImageService {
	return imageServiceInstance
}

// S3ImageService stores customer photos in S3. References are the stable
// object URLs.
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService creates an image service backed by S3.
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// UploadImage validates the photo and uploads it to S3.
func (s *S3ImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s.s3Service.ObjectURL(s3Key), nil
}

// DeleteImage extracts the object key from a stored URL and deletes the
// object. References produced by a different backend are ignored.
func (s *S3ImageService) DeleteImage(ref string) error {
	key := s3KeyFromURL(ref)
	if key == "" {
		return nil
	}
	return s.s3Service.DeleteFile(key)
}

// s3KeyFromURL recovers the object key from a stored object URL.
func s3KeyFromURL(ref string) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Host == "" {
		return ""
	}
	if !strings.Contains(parsed.Host, ".amazonaws.com") {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}
