package app

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

/********** header / slug / text normalization **********/

// NormalizeHeader canonicalizes a CSV header: lower-case, trimmed, runs of
// whitespace and hyphens collapsed to single underscores.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	b.Grow(len(h))
	run := false
	for _, r := range h {
		if r == ' ' || r == '\t' || r == '-' {
			run = true
			continue
		}
		if run {
			b.WriteByte('_')
			run = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Slugify lowers the input and replaces every run of characters outside
// [a-z0-9] with a single hyphen, trimming leading/trailing hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// normText returns the trimmed string, or nil when empty.
func normText(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}

// normWebsite rewrites the value to an absolute URL (https:// is assumed when
// no scheme is present). Unparseable values come back nil: malformed contact
// info never blocks a listing.
func normWebsite(s string) *string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return nil
	}
	if u.Path == "" {
		u.Path = "/"
	}
	out := u.String()
	return &out
}

/********** numeric normalization **********/

func parseNum(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normPriceLevel keeps only values whose rounded form lands in [1,4].
func normPriceLevel(s string) *int {
	f, ok := parseNum(s)
	if !ok || f < 1 || f > 4 {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

// normRating keeps only values in [0,5].
func normRating(s string) *float64 {
	f, ok := parseNum(s)
	if !ok || f < 0 || f > 5 {
		return nil
	}
	return &f
}

// normReviewCount rounds and defaults to 0 when missing, unparseable, or
// negative.
func normReviewCount(s string) int {
	f, ok := parseNum(s)
	if !ok || f < 0 {
		return 0
	}
	return int(math.Round(f))
}
