package utils

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeaderFor builds a real multipart.FileHeader the same way gin sees one,
// by round-tripping a multipart form through an http request.
func fileHeaderFor(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photos", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	headers := req.MultipartForm.File["photos"]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantCode string
	}{
		{"PNG accepted", "design.png", 1024, ""},
		{"JPG accepted", "saree.jpg", 1024, ""},
		{"Uppercase extension accepted", "BLOUSE.JPEG", 1024, ""},
		{"WebP accepted", "reference.webp", 1024, ""},
		{"PDF rejected", "measurements.pdf", 1024, "INVALID_FILE_FORMAT"},
		{"No extension rejected", "photo", 1024, "INVALID_FILE_FORMAT"},
		{"Oversized rejected", "huge.png", MaxFileSize + 1, "FILE_TOO_LARGE"},
		{"Exactly at limit accepted", "limit.png", MaxFileSize, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := fileHeaderFor(t, tt.filename, []byte("img"))
			// The round trip fixes Size to the real content length, so
			// override it to exercise the size check.
			header.Size = tt.size

			err := ValidateImageFile(header)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}

			var uploadErr *FileUploadError
			require.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.wantCode, uploadErr.Code)
		})
	}
}

func TestSaveUploadedFile(t *testing.T) {
	dir := t.TempDir()
	header := fileHeaderFor(t, "lehenga design.png", []byte("fake-png-bytes"))

	filename, err := SaveUploadedFile(header, dir)
	require.NoError(t, err)

	assert.NotEqual(t, "lehenga design.png", filename)
	assert.Contains(t, filename, "lehenga design.png")
	assert.NotContains(t, filename, string(filepath.Separator))

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-png-bytes"), data)
}

func TestSaveUploadedFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	header := fileHeaderFor(t, "a.jpg", []byte("x"))

	filename, err := SaveUploadedFile(header, dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err)
}

func TestSaveUploadedFileStripsPathFromName(t *testing.T) {
	dir := t.TempDir()
	header := fileHeaderFor(t, "photo.png", []byte("x"))
	header.Filename = "../../escape.png"

	filename, err := SaveUploadedFile(header, dir)
	require.NoError(t, err)

	assert.Contains(t, filename, "escape.png")
	assert.NotContains(t, filename, "..")

	_, err = os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err)
}
