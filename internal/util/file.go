package util

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidateMimeType sniffs the first 512 bytes of reader and checks them
// against allowed prefixes or exact types such as "image/" or "application/pdf".
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, Validationf("invalid file type: %s", mimeType)
}

// ValidateUpload checks the size and sniffed type of an uploaded file.
func ValidateUpload(fh *multipart.FileHeader, allowedTypes []string) (string, error) {
	if fh.Size > MaxUploadBytes {
		return "", Validationf("file exceeds %d MB", MaxUploadBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ValidateMimeType(f, allowedTypes)
}

// ObjectKey builds a unique storage key under prefix, keeping the extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s", prefix, time.Now().Format("200601"), uuid.New().String(), ext)
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/") || mimeType == "application/x-mpegURL"
}

func IsVideoFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
