// Package daemon coordinates a long-running watch session.
//
// It wires configuration, the history store, the dispatcher and the
// filesystem watcher into a single lifecycle with flock-based locking so only
// one process organizes a given watch directory at a time. The same lock is
// taken by one-shot organize runs through TryLockRoot.
//
// Keep sorting logic out of here: classification and moves belong to the
// dispatch package while the daemon focuses on startup, shutdown and totals.
package daemon
