package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the calendar date format encoded in image filenames.
const DateLayout = "2006-01-02"

// ErrInvalidDateName marks a filename whose stem is not a YYYY-MM-DD date.
var ErrInvalidDateName = errors.New("filename must be YYYY-MM-DD.jpg")

// DatedImage is a photo whose filename is its target calendar date.
type DatedImage struct {
	Name string
	Date time.Time
}

// ParseDatedImage derives the target date from a filename such as "2025-01-01.jpg".
func ParseDatedImage(name string) (DatedImage, error) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	date, err := time.Parse(DateLayout, stem)
	if err != nil {
		return DatedImage{}, fmt.Errorf("%s: %w", base, ErrInvalidDateName)
	}

	return DatedImage{Name: base, Date: date}, nil
}

// IsJPEG reports whether the filename carries a JPEG suffix.
func IsJPEG(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// DayOfYear returns the 1-based ordinal of the image date.
func (d DatedImage) DayOfYear() int {
	return d.Date.YearDay()
}

// Tag renders the day ordinal, e.g. "#032".
func (d DatedImage) Tag() string {
	return fmt.Sprintf("#%03d", d.DayOfYear())
}

// ShortDate renders the date as "01 FEB".
func (d DatedImage) ShortDate() string {
	return strings.ToUpper(d.Date.Format("02 Jan"))
}

// BatchReport summarizes one compositor batch.
type BatchReport struct {
	Processed int
	Skipped   int
	Failed    int
}
