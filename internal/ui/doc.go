// Package ui implements the interactive selection picker using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [GroupListView] : the five selection groups with their item counts
//  2. [CategoryListView] : the categories of the chosen group
//  3. [ItemListView] : catalog items of a category; space toggles through the selection store
//  4. [ConfirmView] : confirm album creation for the current group
//  5. [CreatingView] / [ResultView] : album creation and its outcome
//
// The (view) [Model] implements the standard Init/Update/View pattern, receiving messages via the Msg union type.
// The status line follows the store's progress events (saving, saved, save failed), read from a channel without blocking the store.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, a, y/n, q) with contextual help from charmbracelet/bubbles/help.
package ui
