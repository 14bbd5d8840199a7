package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"lms/config"
)

// MaxVideoSizeBytes is the upload ceiling for lesson videos.
func MaxVideoSizeBytes() int64 {
	return config.AppConfig.MaxVideoSizeMB * 1024 * 1024
}

// ValidateVideoUpload rejects oversized files before anything is written.
func ValidateVideoUpload(file *multipart.FileHeader) error {
	if file.Size > MaxVideoSizeBytes() {
		return fmt.Errorf("video file exceeds the %d MB limit", config.AppConfig.MaxVideoSizeMB)
	}
	return nil
}

func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	// Create a unique filename
	ext := filepath.Ext(file.Filename)
	newFilename := uuid.NewString() + ext
	filePath := filepath.Join(destDir, newFilename)

	// Create destination file
	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Copy the file content
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filePath, nil
}

func GetFileURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	return "/uploads/" + filepath.Base(filePath)
}
