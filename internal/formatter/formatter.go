// package formatter renders selections, albums and catalog items as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wedx/internal/models"
)

// Names maps a category and item id to a display name. Missing entries fall back to the id.
type Names map[models.Category]map[string]string

// NamesFromItems indexes catalog items by category and id.
func NamesFromItems(items []models.CatalogItem) Names {
	n := make(Names)
	for _, item := range items {
		if n[item.Category] == nil {
			n[item.Category] = make(map[string]string)
		}
		n[item.Category][item.ID] = item.Name
	}
	return n
}

func (n Names) lookup(c models.Category, id string) string {
	if name, ok := n[c][id]; ok && name != "" {
		return name
	}
	return id
}

func (n Names) list(c models.Category, ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = n.lookup(c, id)
	}
	return strings.Join(out, ", ")
}

// SelectionToText lists the non-empty categories of every group, plus the local-only colors.
func SelectionToText(sel models.Selection, names Names) []byte {
	var buf bytes.Buffer

	for _, g := range models.Groups() {
		counts := sel.ForGroup(g)
		total := 0
		for _, ids := range counts {
			total += len(ids)
		}
		buf.WriteString(fmt.Sprintf("%s (%d items)\n", g.Label(), total))
		for _, c := range g.Categories() {
			if ids := counts[c]; len(ids) > 0 {
				buf.WriteString(fmt.Sprintf("  %s: %s\n", c.Label(), names.list(c, ids)))
			}
		}
	}

	if colors := models.Dedup(sel[models.Colors]); len(colors) > 0 {
		buf.WriteString(fmt.Sprintf("%s (local): %s\n", models.Colors.Label(), names.list(models.Colors, colors)))
	}

	return buf.Bytes()
}

// SelectionToMarkdown renders the non-empty groups as Markdown sections.
func SelectionToMarkdown(sel models.Selection, names Names) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Selections\n\n")
	empty := true
	for _, g := range models.Groups() {
		if sel.GroupEmpty(g) {
			continue
		}
		empty = false
		buf.WriteString(fmt.Sprintf("## %s\n\n", g.Label()))
		for _, c := range g.Categories() {
			if ids := models.Dedup(sel[c]); len(ids) > 0 {
				buf.WriteString(fmt.Sprintf("- **%s**: %s\n", c.Label(), names.list(c, ids)))
			}
		}
		buf.WriteString("\n")
	}

	if empty {
		buf.WriteString("_Nothing selected._\n")
	}
	return buf.Bytes()
}

// AlbumsToCSV converts albums to CSV with columns: ID, Name, Type, PinnedSelectionID, CreatedAt, Note
func AlbumsToCSV(albums []models.Album) ([]byte, error) {
	rows := make([][]string, 0, len(albums))
	for _, a := range albums {
		rows = append(rows, []string{a.ID, a.Name, string(a.Type), a.PinnedSelectionID, formatTime(a.CreatedAt), a.Note})
	}
	return writeCSV([]string{"ID", "Name", "Type", "PinnedSelectionID", "CreatedAt", "Note"}, rows)
}

// AlbumsToText converts albums to a numbered plain text list
func AlbumsToText(albums []models.Album) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Albums: %d\n\n", len(albums)))
	for i, a := range albums {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] (ID: %s)\n", i+1, a.Name, a.Type, a.ID))
		if a.Note != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", a.Note))
		}
	}
	return buf.Bytes()
}

// AlbumLogToCSV converts local album history to CSV with columns: AlbumID, Name, Type, Items, CreatedAt, Note
func AlbumLogToCSV(entries []models.AlbumLogEntry) ([]byte, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.AlbumID, e.Name, string(e.Type), strconv.Itoa(e.ItemCount), formatTime(e.CreatedAt), e.Note})
	}
	return writeCSV([]string{"AlbumID", "Name", "Type", "Items", "CreatedAt", "Note"}, rows)
}

// AlbumLogToText converts local album history to plain text
func AlbumLogToText(entries []models.AlbumLogEntry) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Albums created here: %d\n\n", len(entries)))
	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("%s  %-12s %s (%d items)\n", formatTime(e.CreatedAt), e.Type, e.Name, e.ItemCount))
	}
	return buf.Bytes()
}

// CatalogToCSV converts catalog items to CSV with columns: ID, Category, Name, Price, ImageURL
func CatalogToCSV(items []models.CatalogItem) ([]byte, error) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.ID, string(item.Category), item.Name, strconv.FormatInt(item.Price, 10), item.ImageURL})
	}
	return writeCSV([]string{"ID", "Category", "Name", "Price", "ImageURL"}, rows)
}

// CatalogToText lists catalog items, marking those in selected with an asterisk
func CatalogToText(items []models.CatalogItem, selected models.Selection) []byte {
	var buf bytes.Buffer

	for _, item := range items {
		mark := " "
		if selected.Contains(item.Category, item.ID) {
			mark = "*"
		}
		buf.WriteString(fmt.Sprintf("%s %-16s %s\n", mark, item.ID, item.Name))
	}
	return buf.Bytes()
}

// WriteExport writes data to path, creating parent directories as needed.
func WriteExport(data []byte, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty output path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
