package related

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the canonical form of every temporal value.
const DateLayout = "2006-01-02"

// Well-known field names.
const (
	KeyPosition     = "position"
	KeyDateCreated  = "date created"
	KeyDateModified = "date modified"
	KeyDateUpdated  = "date updated"
)

type fieldClass int

const (
	classPlain fieldClass = iota
	classCreated
	classModified
)

func classify(key string) fieldClass {
	switch strings.ToLower(key) {
	case KeyDateCreated:
		return classCreated
	case KeyDateUpdated, KeyDateModified:
		return classModified
	default:
		return classPlain
	}
}

func (c fieldClass) temporal() bool {
	return c != classPlain
}

// formatDate renders a timestamp as YYYY-MM-DD in loc.
func formatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// normalizeDate reformats a free-form date string to YYYY-MM-DD. Values
// that do not parse are returned unchanged.
func normalizeDate(s string, loc *time.Location) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	t, err := dateparse.ParseIn(trimmed, loc)
	// dateparse accepts fragments like "1/" as year 0.
	if err != nil || t.Year() <= 0 {
		return s
	}
	return formatDate(t, loc)
}

// normalize returns the comparable strings of raw values for a field.
func normalize(values []string, class fieldClass, loc *time.Location) []string {
	if !class.temporal() {
		return values
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = normalizeDate(v, loc)
	}
	return out
}

// foldKey is the comparison form of a value.
func foldKey(s string) string {
	return strings.ToLower(s)
}

// dedupeFold drops case-insensitive repeats, first-seen wins.
func dedupeFold(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := foldKey(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
