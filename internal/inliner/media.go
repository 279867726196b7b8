package inliner

import "strings"

// Media is the closed set of attachment categories, in dispatch priority order.
type Media int

const (
	MediaOther Media = iota
	MediaImage
	MediaAudio
	MediaVideo
	MediaPDF
)

func (m Media) String() string {
	switch m {
	case MediaImage:
		return "image"
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	case MediaPDF:
		return "pdf"
	default:
		return "other"
	}
}

// Classify maps a mime type onto a Media category.
// Prefix checks run before the exact pdf match; anything else is MediaOther.
func Classify(mime string) Media {
	m := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(m, "image/"):
		return MediaImage
	case strings.HasPrefix(m, "audio/"):
		return MediaAudio
	case strings.HasPrefix(m, "video/"):
		return MediaVideo
	case m == "application/pdf":
		return MediaPDF
	default:
		return MediaOther
	}
}
