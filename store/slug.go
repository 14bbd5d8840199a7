package store

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// stripMarks decomposes accented characters and drops the combining marks,
// so "Café" slugifies to "cafe" instead of losing the letter.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts s into a lowercase ASCII token with words joined by a
// single hyphen. Returns "" when nothing usable survives.
func Slugify(s string) string {
	s = strings.TrimSpace(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// UniqueSlug derives a slug for a new or not-yet-slugged row in table.
//
// The candidate comes from source; a blank or non-transliterable source
// falls back to a short random token so a slug is never empty. Uniqueness
// is checked against every row of the table, tombstones included, so a
// restored record can never collide with whatever reused its old slug.
// excludeID skips the record's own row. Taken candidates get -2, -3, ...
// suffixes until one is free.
//
// The check-then-write is still racy across workers; the table's unique
// index is the real arbiter and callers retry on gorm.ErrDuplicatedKey.
func UniqueSlug(tx *gorm.DB, table, source string, excludeID uint) (string, error) {
	base := Slugify(source)
	if base == "" {
		base = uuid.NewString()[:8]
	}

	slug := base
	for counter := 2; ; counter++ {
		var n int64
		q := tx.Table(table).Where("slug = ?", slug)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
