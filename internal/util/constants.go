package util

const (
	DateFormat     = "2006-01-02"
	TimeFormat     = "2006-01-02 15:04:05"
	HourFormat     = "15:04"
	DefaultPage    = 1
	DefaultLimit   = 20
	MaxLimit       = 100
	MaxUploadBytes = 50 << 20
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeText        = "text/"
	MimeZip         = "application/zip"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}

	// AllowedUploadTypes are accepted for resource and community uploads.
	AllowedUploadTypes = []string{MimeVideo, MimeImage, MimePDF, MimeText, MimeZip, MimeOctetStream}
)
