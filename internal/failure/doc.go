// Package failure defines the error taxonomy shared by classification and
// relocation.
//
// Every per-item failure is tagged with one of the sentinel markers so the
// dispatcher can decide whether to skip quietly, warn, or raise a loud alert
// without string matching. Wrap adds stage/operation context in the same shape
// everywhere, and Kind turns a marker back into a stable label for the history
// journal.
package failure
