// Package main hosts the sortbox CLI entrypoint and command graph.
//
// The Cobra-based command tree runs foreground watch sessions, one-shot
// organize passes, classification previews, history queries and
// configuration scaffolding. It centralizes configuration resolution and
// logger setup so subcommands can focus on presentation.
//
// Keep this package lean: sorting behavior lives in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
