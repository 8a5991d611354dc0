// Package tasks runs the long-running, multi-request operations of the CLI with real-time progress reporting.
//
// # Core Operations
//
// [Engine] exposes two operations:
//
//  1. [Engine.SyncCatalog] : refresh the local catalog cache
//     - Fetches each requested category from the backend with a rate-limited worker pool
//     - Hands every fetched category to the [CatalogCacher] (repositories.CatalogCacheAdapter)
//     - Partial failures are reported per category; the sync itself only fails when nothing could be fetched
//
//  2. [Engine.Dump] : snapshot the raw backend state
//     - Retrieves health, pinned selections and albums through the raw [APIClient]
//     - Failed endpoints are collected instead of aborting the dump
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, a message and optional data.
// Updates use select with default to prevent blocking.
package tasks
