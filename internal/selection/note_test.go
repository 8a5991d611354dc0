package selection

import (
	"strings"
	"testing"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildNote(t *testing.T) {
	t.Run("counts every category of the group", func(t *testing.T) {
		note := BuildNote(models.WeddingDress, models.Selection{
			models.Veils:   {"v1"},
			models.Jewelry: {"j1", "j1"},
		})

		assert.True(t, strings.HasPrefix(note, "wedding-dress: styles=0 materials=0"))
		assert.Contains(t, note, "veils=1 jewelry=1")
		assert.True(t, strings.HasSuffix(note, "(2 items)"))
	})

	t.Run("ignores other groups", func(t *testing.T) {
		note := BuildNote(models.ToneColor, models.Selection{
			models.Veils:             {"v1"},
			models.WeddingToneColors: {"blush"},
		})
		assert.Equal(t, "tone-color: weddingToneColors=1 engageToneColors=0 (1 items)", note)
	})
}
