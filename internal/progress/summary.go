package progress

import (
	"coursehub/internal/catalog"
	"coursehub/pkg/models"
)

// Summarize counts completed topics per course against the current catalog.
// Completions for topics that no longer exist are ignored.
func Summarize(cat *catalog.Catalog, completed map[string]struct{}) []models.CourseProgress {
	out := make([]models.CourseProgress, 0, len(cat.Courses()))
	byCourse := make(map[string]int)
	for _, cs := range cat.Courses() {
		byCourse[cs.Key] = len(out)
		out = append(out, models.CourseProgress{CourseKey: cs.Key, CourseTitle: cs.Title})
	}

	for _, e := range cat.Entries() {
		i := byCourse[e.CourseKey]
		out[i].Total++
		if _, ok := completed[e.ID]; ok {
			out[i].Completed++
		}
	}
	return out
}

// NextUncompleted returns the first topic in catalog order that is not in
// completed, scoped to courseKey when it is non-empty.
func NextUncompleted(cat *catalog.Catalog, completed map[string]struct{}, courseKey string) (models.FlatEntry, bool) {
	for _, e := range cat.Entries() {
		if courseKey != "" && e.CourseKey != courseKey {
			continue
		}
		if _, ok := completed[e.ID]; !ok {
			return e, true
		}
	}
	return models.FlatEntry{}, false
}
