package selection

import (
	"fmt"
	"strings"

	"github.com/desertthunder/wedx/internal/models"
)

// BuildNote summarizes the per-category counts of a group's selection, e.g.
//
//	wedding-dress: styles=0 materials=0 ... veils=1 jewelry=1 ... (2 items)
func BuildNote(g models.GroupType, s models.Selection) string {
	cats := g.Categories()
	parts := make([]string, 0, len(cats))
	total := 0
	for _, c := range cats {
		n := len(models.Dedup(s[c]))
		total += n
		parts = append(parts, fmt.Sprintf("%s=%d", c, n))
	}
	return fmt.Sprintf("%s: %s (%d items)", g, strings.Join(parts, " "), total)
}
