// Package models defines the domain vocabulary for the wedx selection client.
//
// The package contains three groups of types:
//
// 1. Catalog dimensions
//   - [Category] : a single selectable dimension (dress styles, veils, lapels, ...)
//   - [GroupType] : one of the five independent selection domains, each owning several categories
//
// 2. Draft state
//   - [Selection] : id lists keyed by category, the shape shared by the local draft and pinned selections
//
// 3. Backend records
//   - [PinnedSelection] : the single overwritable draft record per group type
//   - [Album] / [AlbumRequest] : the permanent snapshot created from a pinned selection
//   - [CatalogItem] : an item the user can pick, cached locally by the repositories package
//
// The "colors" category is local-only: it belongs to no group and is never sent to the backend.
package models
