package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/wedx/internal/models"
)

var (
	_ list.Item = groupItem{}
	_ list.Item = categoryItem{}
	_ list.Item = catalogItem{}
)

// groupItem wraps [models.GroupType] to implement [list.Item].
type groupItem struct {
	group models.GroupType
	count int
	dirty bool
}

func (i groupItem) FilterValue() string { return i.group.Label() }
func (i groupItem) Title() string       { return i.group.Label() }
func (i groupItem) Description() string {
	desc := fmt.Sprintf("%d selected", i.count)
	if i.dirty {
		desc += " • unsaved"
	}
	return desc
}

// categoryItem wraps [models.Category] to implement [list.Item].
type categoryItem struct {
	category models.Category
	count    int
}

func (i categoryItem) FilterValue() string { return i.category.Label() }
func (i categoryItem) Title() string       { return i.category.Label() }
func (i categoryItem) Description() string {
	desc := fmt.Sprintf("%d selected", i.count)
	if !i.category.Persisted() {
		desc += " • local only"
	}
	return desc
}

// catalogItem wraps [models.CatalogItem] to implement [list.Item].
type catalogItem struct {
	item     models.CatalogItem
	selected bool
}

func (i catalogItem) FilterValue() string { return i.item.Name }
func (i catalogItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	name := i.item.Name
	if name == "" {
		name = i.item.ID
	}
	return fmt.Sprintf("%s %s", mark, name)
}
func (i catalogItem) Description() string {
	parts := []string{i.item.ID}
	if i.item.Price > 0 {
		parts = append(parts, fmt.Sprintf("%d", i.item.Price))
	}
	return strings.Join(parts, " • ")
}
