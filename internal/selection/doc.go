// Package selection implements the draft store behind the picker: per-category id lists,
// per-group dirty tracking, debounced background saves and album creation.
//
// # Groups and Categories
//
// Categories are grouped into five independent groups ([models.Groups]). Toggling a category
// marks its group dirty and schedules a save. The local-only colors category belongs to no group
// and never triggers a save.
//
// # Saving
//
// [Store.SaveAll] writes every group that is dirty and non-empty as a pinned selection
// (delete, then create). Saves are single-flight: a call made while a save is running only
// flags a rerun, and the running save repeats once when it finishes. A toggle storm therefore
// produces at most one save in flight plus one queued rerun.
//
// A group's dirty flag is cleared only when no toggle touched the group while its write was in
// flight; otherwise the rerun picks it up.
//
// Background saves triggered by [Store.Toggle] log their failures and never surface them.
// Explicit callers of [Store.SaveAll] and [Store.Flush] get the joined per-group errors.
//
// # Albums
//
// [Store.CreateAlbum] validates the group locally, force-writes its pinned selection, names
// the album after the current album count and creates it. Success consumes the draft: every
// category is cleared. Failure leaves the draft untouched so the caller can retry.
//
// # Events
//
// When [Options.Events] is set, the store reports progress on it without ever blocking;
// updates are dropped when the channel is full.
package selection
