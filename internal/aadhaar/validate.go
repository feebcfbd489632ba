package aadhaar

import (
	"errors"
	"net/http"
	"strings"
)

// MaxImageBytes caps each Aadhaar image at 3 MiB.
const MaxImageBytes = 3 << 20

var (
	ErrImageTooBig  = errors.New("image exceeds 3MB limit")
	ErrImageFormat  = errors.New("image must be JPEG or PNG")
	ErrImageMissing = errors.New("image is required")
)

var allowedImageMimes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

// ValidateImage checks a staged Aadhaar image before anything is stored.
// Rejection is synchronous and leaves no side effect. The declared MIME type
// is cross-checked against the sniffed content.
func ValidateImage(declaredMime string, size int64, head []byte) error {
	if size <= 0 {
		return ErrImageMissing
	}
	if size > MaxImageBytes {
		return ErrImageTooBig
	}
	if !imageMimeAllowed(declaredMime) {
		return ErrImageFormat
	}
	if len(head) > 0 && !imageMimeAllowed(http.DetectContentType(head)) {
		return ErrImageFormat
	}
	return nil
}

func imageMimeAllowed(mimeType string) bool {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	_, ok := allowedImageMimes[clean]
	return ok
}
