package vsco

import (
	"path"

	"vscobot/internal/domain"
)

// Classify maps the file extension of a media URL to a MediaKind.
// Matching is exact and case-sensitive; query strings are not stripped.
func Classify(url string) domain.MediaKind {
	switch path.Ext(url) {
	case ".jpg", ".jpeg", ".png":
		return domain.MediaPhoto
	case ".mp4", ".mov", ".gif":
		return domain.MediaVideo
	default:
		return domain.MediaUnknown
	}
}
