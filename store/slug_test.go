package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/models"
	"lms/store"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Go Basics", "go-basics"},
		{"  Trimmed   Spaces  ", "trimmed-spaces"},
		{"Hello, World!", "hello-world"},
		{"Café Culture & Crêpes", "cafe-culture-crepes"},
		{"C++ 101", "c-101"},
		{"---", ""},
		{"", ""},
		{"ALL CAPS", "all-caps"},
		{"already-a-slug", "already-a-slug"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, store.Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestUniqueSlugSuffixesCollisions(t *testing.T) {
	db := newTestDB(t)

	first := makeCourse(t, db, "Go Basics")
	assert.Equal(t, "go-basics", first.Slug)

	second := makeCourse(t, db, "Go Basics")
	assert.Equal(t, "go-basics-2", second.Slug)

	third := makeCourse(t, db, "Go Basics!")
	assert.Equal(t, "go-basics-3", third.Slug)
}

func TestUniqueSlugCountsTombstones(t *testing.T) {
	db := newTestDB(t)
	courses := store.New[models.Course](db)

	first := makeCourse(t, db, "Go Basics")
	require.NoError(t, courses.SoftDelete(first))

	// A deleted course still owns its slug, so a restore can never land on
	// a collision.
	second := makeCourse(t, db, "Go Basics")
	assert.Equal(t, "go-basics-2", second.Slug)
}

func TestUniqueSlugFallsBackWhenSourceIsBlank(t *testing.T) {
	db := newTestDB(t)

	slug, err := store.UniqueSlug(db, "courses", "???", 0)
	require.NoError(t, err)
	assert.Len(t, slug, 8)
	assert.NotEmpty(t, store.Slugify(slug), "fallback token must itself be slug-safe")
}

func TestUniqueSlugExcludesOwnRow(t *testing.T) {
	db := newTestDB(t)

	course := makeCourse(t, db, "Go Basics")

	// Re-deriving for the same row must not see itself as a collision.
	slug, err := store.UniqueSlug(db, "courses", course.Title, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "go-basics", slug)
}
