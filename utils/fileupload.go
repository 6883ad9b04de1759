package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// allowedImageFormats are the upload extensions the order form accepts.
var allowedImageFormats = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageFormats[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only JPG and PNG files are allowed",
		}
	}

	return nil
}

// ValidateImageFiles validates every file in a multipart upload batch.
func ValidateImageFiles(files []*multipart.FileHeader) error {
	for _, fh := range files {
		if err := ValidateImageFile(fh); err != nil {
			return err
		}
	}
	return nil
}
