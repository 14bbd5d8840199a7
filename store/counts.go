package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Rel describes one join hop from a parent table to a child table.
type Rel struct {
	Name  string // annotation segment, e.g. "modules"
	Table string // joined table name
	FK    string // column on Table referencing the parent's id
}

// Path is a chain of hops starting at the base table.
type Path []Rel

// WithCounts annotates the query with one distinct count per path.
//
// Each path contributes a column named by joining its segment names with
// an underscore plus a "_count" suffix, e.g.
//
//	WithCounts(q, "courses", Path{{"modules", "modules", "course_id"}})
//	// adds: COUNT(DISTINCT modules.id) AS modules_count
//
// Counts are COUNT(DISTINCT child.id), so join fan-out between sibling
// paths never inflates them. Joins shared by multiple paths are added
// once. Soft-deleted children are excluded. The result is still a live
// query: callers can filter, order and paginate after annotating.
func WithCounts(q *gorm.DB, baseTable string, paths ...Path) *gorm.DB {
	selects := []string{baseTable + ".*"}
	joined := make(map[string]bool)

	for _, path := range paths {
		parent := baseTable
		segments := make([]string, 0, len(path))
		var leaf Rel
		for _, rel := range path {
			segments = append(segments, rel.Name)
			if !joined[rel.Table] {
				q = q.Joins(fmt.Sprintf(
					"LEFT JOIN %s ON %s.%s = %s.id AND %s.is_deleted = ?",
					rel.Table, rel.Table, rel.FK, parent, rel.Table,
				), false)
				joined[rel.Table] = true
			}
			parent = rel.Table
			leaf = rel
		}
		if len(segments) == 0 {
			continue
		}
		selects = append(selects, fmt.Sprintf(
			"COUNT(DISTINCT %s.id) AS %s_count", leaf.Table, strings.Join(segments, "_"),
		))
	}

	return q.Select(strings.Join(selects, ", ")).Group(baseTable + ".id")
}
