// Package category maps file extensions to destination categories.
//
// The built-in table is an immutable process-wide value; configuration can
// layer extension overrides on top, which yields a fresh Table rather than
// mutating the shared one, so lookups never need locking. Category IDs are
// slash-delimited relative paths, letting the relocator create nested
// destination directories in one step.
package category
