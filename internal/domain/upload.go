package domain

import (
	"fmt"
	"strings"
	"time"
)

// Surface is the destination presentation context of a post.
type Surface string

const (
	SurfaceFeed  Surface = "FEED"
	SurfaceStory Surface = "STORY"
)

// Mode selects which surfaces a run publishes to.
type Mode string

const (
	ModeFeed  Mode = "feed"
	ModeStory Mode = "story"
	ModeBoth  Mode = "both"
)

// ParseMode validates a CLI mode selector.
func ParseMode(value string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(value))); m {
	case ModeFeed, ModeStory, ModeBoth:
		return m, nil
	}
	return "", fmt.Errorf("mode must be %s, %s or %s", ModeFeed, ModeStory, ModeBoth)
}

// Surfaces lists the surfaces for the mode, feed first.
func (m Mode) Surfaces() []Surface {
	switch m {
	case ModeFeed:
		return []Surface{SurfaceFeed}
	case ModeStory:
		return []Surface{SurfaceStory}
	case ModeBoth:
		return []Surface{SurfaceFeed, SurfaceStory}
	}
	return nil
}

// UploadState enumerates the per-surface upload milestones.
type UploadState string

const (
	StateCreating   UploadState = "CREATING"
	StatePublishing UploadState = "PUBLISHING"
	StatePublished  UploadState = "PUBLISHED"
	StateFailed     UploadState = "FAILED"
)

// ContainerRequest carries everything the container-creation call needs.
type ContainerRequest struct {
	Surface  Surface
	ImageURL string
	Caption  string
}

// UploadResult is the terminal outcome of one surface upload.
type UploadResult struct {
	Surface     Surface
	State       UploadState
	ContainerID string
	MediaID     string
	Attempts    int
	Err         error
}

// Published reports whether the surface reached its success state.
func (r UploadResult) Published() bool {
	return r.State == StatePublished
}

// UploadRecord is a persisted history row for one surface upload.
type UploadRecord struct {
	ID          int64
	PostDate    string
	Surface     Surface
	State       UploadState
	ContainerID string
	MediaID     string
	Attempts    int
	Error       string
	CreatedAt   time.Time
}

// RunReport describes a whole poster run.
type RunReport struct {
	PostDate string
	ImageURL string
	Skipped  bool
	Results  []UploadResult
}

// Failed reports whether any surface ended in FAILED.
func (r RunReport) Failed() bool {
	for _, res := range r.Results {
		if !res.Published() {
			return true
		}
	}
	return false
}
