package utils

import (
	"bitlibro/src/config"
	"bitlibro/src/types"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ParseDate parses a YYYY-MM-DD string as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, value, time.UTC)
	if err != nil {
		return time.Time{}, types.NewValidationError("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

func ParseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StartOfDay truncates t to UTC midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AllowedImageExtension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, slices.Contains(config.ALLOWED_IMAGE_EXTENSIONS, ext)
}

func PageOf(q types.PageQuery) (page int, size int) {
	return q.Normalize(config.DEFAULT_PAGE_SIZE, config.MAX_PAGE_SIZE)
}
