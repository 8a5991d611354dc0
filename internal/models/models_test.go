package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/wedx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	t.Run("every category except colors belongs to a group", func(t *testing.T) {
		cats := Categories()
		assert.Len(t, cats, 24)

		for _, c := range cats {
			g, ok := c.Group()
			if c == Colors {
				assert.False(t, ok)
				assert.False(t, c.Persisted())
				continue
			}
			assert.True(t, ok, "category %s has no group", c)
			assert.True(t, g.Valid())
			assert.NotEmpty(t, c.WireKey())
		}
	})

	t.Run("groups partition the persisted categories", func(t *testing.T) {
		seen := map[Category]GroupType{}
		for _, g := range Groups() {
			for _, c := range g.Categories() {
				_, dup := seen[c]
				assert.False(t, dup, "category %s in two groups", c)
				seen[c] = g
			}
		}
		assert.Len(t, seen, 23)
		assert.Equal(t, []Category{WeddingToneColors, EngageToneColors}, ToneColor.Categories())
		assert.Len(t, WeddingDress.Categories(), 9)
		assert.Len(t, Vest.Categories(), 6)
		assert.Len(t, BrideEngage.Categories(), 4)
		assert.Len(t, GroomEngage.Categories(), 2)
	})

	t.Run("wire keys are unique", func(t *testing.T) {
		keys := map[string]bool{}
		for _, c := range Categories() {
			assert.False(t, keys[c.WireKey()], "duplicate wire key %s", c.WireKey())
			keys[c.WireKey()] = true
		}
	})
}

func TestParse(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  Category
	}{
		{name: "canonical", input: "veils", want: Veils},
		{name: "singular alias", input: "style", want: Styles},
		{name: "case insensitive", input: "GROOMLAPEL", want: GroomLapel},
		{name: "alias with spaces", input: "  lapel ", want: GroomLapel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		_, err := ParseCategory("tiaras")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidArgument))
	})

	t.Run("group type", func(t *testing.T) {
		g, err := ParseGroupType("Wedding-Dress")
		require.NoError(t, err)
		assert.Equal(t, WeddingDress, g)

		_, err = ParseGroupType("venue")
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})
}

func TestSelection(t *testing.T) {
	s := Selection{Veils: {"v1", "v1", "v2"}, Colors: {"c1"}}

	assert.False(t, s.Empty())
	assert.True(t, s.GroupEmpty(Vest))
	assert.False(t, s.GroupEmpty(WeddingDress))
	assert.True(t, s.Contains(Veils, "v2"))
	assert.Equal(t, []string{}, s.IDs(Styles))
	assert.Equal(t, 4, s.Total())

	group := s.ForGroup(WeddingDress)
	assert.Equal(t, []string{"v1", "v2"}, group[Veils])
	assert.Equal(t, []string{}, group[Styles])
	assert.NotContains(t, group, Colors)
	assert.Len(t, group, 9)

	clone := s.Clone()
	clone[Veils][0] = "changed"
	assert.Equal(t, "v1", s[Veils][0])
}

func TestPinnedSelectionJSON(t *testing.T) {
	t.Run("marshal writes every group category", func(t *testing.T) {
		p := NewPinnedSelection(WeddingDress, Selection{Veils: {"v1"}, Jewelry: {"j1", "j1"}, Colors: {"c1"}})

		data, err := json.Marshal(p)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "wedding-dress", raw["type"])
		assert.Equal(t, []any{"v1"}, raw["veilIds"])
		assert.Equal(t, []any{"j1"}, raw["jewelryIds"])
		assert.Equal(t, []any{}, raw["styleIds"])
		assert.NotContains(t, raw, "colorIds")
		assert.NotContains(t, raw, "id")
	})

	t.Run("unmarshal reads wire keys", func(t *testing.T) {
		body := `{"id":"p1","type":"vest","lapelIds":["l1","l1"],"vestStyleIds":null,"extra":true}`

		var p PinnedSelection
		require.NoError(t, json.Unmarshal([]byte(body), &p))
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, Vest, p.Type)
		assert.Equal(t, []string{"l1"}, p.Items[GroomLapel])
		assert.Equal(t, []string{}, p.Items[GroomVestStyles])
		assert.Len(t, p.Items, 6)
	})

	t.Run("unmarshal rejects unknown type", func(t *testing.T) {
		var p PinnedSelection
		assert.Error(t, json.Unmarshal([]byte(`{"id":"p1","type":"venue"}`), &p))
	})

	t.Run("unmarshal rejects malformed id list", func(t *testing.T) {
		var p PinnedSelection
		assert.Error(t, json.Unmarshal([]byte(`{"type":"tone-color","weddingToneColorIds":"t1"}`), &p))
	})
}
