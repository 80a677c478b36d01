package catalog

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff of topic order between two snapshots,
// one "course/section/id" line per topic. Empty when the order is unchanged.
func Diff(prev, next *Catalog) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        orderLines(prev),
		B:        orderLines(next),
		FromFile: "catalog@" + stamp(prev),
		ToFile:   "catalog@" + stamp(next),
		Context:  1,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("diff catalog: %w", err)
	}
	return out, nil
}

func orderLines(c *Catalog) []string {
	if c == nil {
		return nil
	}
	lines := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		lines = append(lines, e.CourseKey+"/"+e.SectionKey+"/"+e.ID+"\n")
	}
	return lines
}

func stamp(c *Catalog) string {
	if c == nil {
		return "empty"
	}
	return c.builtAt.Format("15:04:05")
}
