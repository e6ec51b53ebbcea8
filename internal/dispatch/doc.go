// Package dispatch reacts to changes in the watch directory by sorting each of
// its immediate children into a category directory.
//
// A pass enumerates the watch directory, skips the destination root and any
// ignored names, classifies files by extension and folders by content
// majority, then hands each item to the relocator. Every outcome lands in the
// returned Report and, when configured, in the history journal. Passes are
// serialized by a mutex and always run to completion once started.
package dispatch
