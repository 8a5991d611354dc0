// Package repositories implements SQLite persistence for the local catalog cache and album log.
//
// Key Implementations:
//   - [CatalogRepository] : catalog items keyed by (category, id), replaced wholesale on sync
//   - [AlbumLogRepository] : albums created from this client, newest first
//   - [CatalogCacheAdapter] : adapts [CatalogRepository] to the catalog sync task
//
// The backend stays the source of truth for pinned selections and albums; nothing here is read by the selection store.
package repositories
