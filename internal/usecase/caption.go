package usecase

import (
	"fmt"
	"strings"
	"time"

	"PhotoDaily/internal/domain"
)

// AutoCaption is the sentinel that requests the generated caption.
const AutoCaption = "AUTO"

// ResolveCaption returns literal captions untouched and expands AutoCaption
// using the post date.
func ResolveCaption(requested string, postDate time.Time, hashtags string) string {
	if strings.TrimSpace(requested) != AutoCaption {
		return requested
	}
	return fmt.Sprintf("Day %d of 365.\n%s\n\n%s",
		postDate.YearDay(),
		postDate.Format(domain.DateLayout),
		hashtags)
}

// captionFor applies the per-surface rule: stories never carry caption text.
func captionFor(surface domain.Surface, caption string) string {
	if surface == domain.SurfaceStory {
		return ""
	}
	return caption
}
