package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/wedx/internal/shared"
)

// Category identifies a single selectable dimension of the catalog.
type Category string

const (
	Styles                 Category = "styles"
	Materials              Category = "materials"
	Necklines              Category = "necklines"
	Details                Category = "details"
	Veils                  Category = "veils"
	Jewelry                Category = "jewelry"
	Hairpins               Category = "hairpins"
	Crowns                 Category = "crowns"
	Flowers                Category = "flowers"
	Colors                 Category = "colors"
	WeddingToneColors      Category = "weddingToneColors"
	EngageToneColors       Category = "engageToneColors"
	GroomLapel             Category = "groomLapel"
	GroomPocketSquare      Category = "groomPocketSquare"
	GroomDecor             Category = "groomDecor"
	GroomVestStyles        Category = "groomVestStyles"
	GroomVestMaterials     Category = "groomVestMaterials"
	GroomVestColors        Category = "groomVestColors"
	BrideEngageStyles      Category = "brideEngageStyles"
	BrideEngageMaterials   Category = "brideEngageMaterials"
	BrideEngagePatterns    Category = "brideEngagePatterns"
	BrideEngageHeadwears   Category = "brideEngageHeadwears"
	GroomEngageOutfits     Category = "groomEngageOutfits"
	GroomEngageAccessories Category = "groomEngageAccessories"
)

// GroupType is one of the five independent selection domains.
// Each group is persisted as its own pinned selection.
type GroupType string

const (
	WeddingDress GroupType = "wedding-dress"
	Vest         GroupType = "vest"
	BrideEngage  GroupType = "bride-engage"
	GroomEngage  GroupType = "groom-engage"
	ToneColor    GroupType = "tone-color"
)

type categoryInfo struct {
	wireKey string
	label   string
	alias   string
	group   GroupType
}

var categoryOrder = []Category{
	Styles, Materials, Necklines, Details, Veils, Jewelry, Hairpins, Crowns, Flowers,
	Colors,
	WeddingToneColors, EngageToneColors,
	GroomVestStyles, GroomVestMaterials, GroomVestColors, GroomLapel, GroomPocketSquare, GroomDecor,
	BrideEngageStyles, BrideEngageMaterials, BrideEngagePatterns, BrideEngageHeadwears,
	GroomEngageOutfits, GroomEngageAccessories,
}

var categoryTable = map[Category]categoryInfo{
	Styles:                 {"styleIds", "Dress styles", "style", WeddingDress},
	Materials:              {"materialIds", "Materials", "material", WeddingDress},
	Necklines:              {"necklineIds", "Necklines", "neckline", WeddingDress},
	Details:                {"detailIds", "Details", "detail", WeddingDress},
	Veils:                  {"veilIds", "Veils", "veil", WeddingDress},
	Jewelry:                {"jewelryIds", "Jewelry", "jewel", WeddingDress},
	Hairpins:               {"hairpinIds", "Hairpins", "hairpin", WeddingDress},
	Crowns:                 {"crownIds", "Crowns", "crown", WeddingDress},
	Flowers:                {"flowerIds", "Flowers", "flower", WeddingDress},
	Colors:                 {"colorIds", "Colors", "color", ""},
	WeddingToneColors:      {"weddingToneColorIds", "Wedding tone colors", "weddingToneColor", ToneColor},
	EngageToneColors:       {"engageToneColorIds", "Engagement tone colors", "engageToneColor", ToneColor},
	GroomVestStyles:        {"vestStyleIds", "Vest styles", "groomVestStyle", Vest},
	GroomVestMaterials:     {"vestMaterialIds", "Vest materials", "groomVestMaterial", Vest},
	GroomVestColors:        {"vestColorIds", "Vest colors", "groomVestColor", Vest},
	GroomLapel:             {"lapelIds", "Lapels", "lapel", Vest},
	GroomPocketSquare:      {"pocketSquareIds", "Pocket squares", "pocketSquare", Vest},
	GroomDecor:             {"decorIds", "Decor", "decor", Vest},
	BrideEngageStyles:      {"brideEngageStyleIds", "Bride engagement styles", "brideEngageStyle", BrideEngage},
	BrideEngageMaterials:   {"brideEngageMaterialIds", "Bride engagement materials", "brideEngageMaterial", BrideEngage},
	BrideEngagePatterns:    {"brideEngagePatternIds", "Bride engagement patterns", "brideEngagePattern", BrideEngage},
	BrideEngageHeadwears:   {"brideEngageHeadwearIds", "Bride engagement headwear", "brideEngageHeadwear", BrideEngage},
	GroomEngageOutfits:     {"groomEngageOutfitIds", "Groom engagement outfits", "groomEngageOutfit", GroomEngage},
	GroomEngageAccessories: {"groomEngageAccessoryIds", "Groom engagement accessories", "groomEngageAccessory", GroomEngage},
}

var groupOrder = []GroupType{WeddingDress, Vest, BrideEngage, GroomEngage, ToneColor}

var groupLabels = map[GroupType]string{
	WeddingDress: "Wedding dress",
	Vest:         "Groom vest",
	BrideEngage:  "Bride engagement",
	GroomEngage:  "Groom engagement",
	ToneColor:    "Tone colors",
}

// Categories returns every category in display order, including local-only ones.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

// Groups returns the five group types in display order.
func Groups() []GroupType {
	return append([]GroupType(nil), groupOrder...)
}

// ParseCategory resolves a category from its canonical key or singular alias, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categoryOrder {
		info := categoryTable[c]
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, info.alias) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, s)
}

// ParseGroupType resolves a group type from its canonical key, ignoring case.
func ParseGroupType(s string) (GroupType, error) {
	s = strings.TrimSpace(s)
	for _, g := range groupOrder {
		if strings.EqualFold(s, string(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: unknown group type %q", shared.ErrInvalidArgument, s)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// WireKey is the JSON field the backend uses for this category's id list.
func (c Category) WireKey() string { return categoryTable[c].wireKey }

// Label is the human readable name of the category.
func (c Category) Label() string {
	if l := categoryTable[c].label; l != "" {
		return l
	}
	return string(c)
}

// Group returns the group owning c. Local-only categories report false.
func (c Category) Group() (GroupType, bool) {
	info, ok := categoryTable[c]
	if !ok || info.group == "" {
		return "", false
	}
	return info.group, true
}

// Persisted reports whether the category is ever written to the backend.
func (c Category) Persisted() bool {
	_, ok := c.Group()
	return ok
}

// Valid reports whether g is one of the five group types.
func (g GroupType) Valid() bool {
	_, ok := groupLabels[g]
	return ok
}

// Label is the human readable name of the group.
func (g GroupType) Label() string {
	if l, ok := groupLabels[g]; ok {
		return l
	}
	return string(g)
}

// Categories lists the categories owned by g in display order.
func (g GroupType) Categories() []Category {
	var cats []Category
	for _, c := range categoryOrder {
		if categoryTable[c].group == g && g != "" {
			cats = append(cats, c)
		}
	}
	return cats
}
