// Package logs reads the run log behind the sortbox.log pointer for the CLI.
//
// It returns the last N lines with bounded memory, resumes from byte offsets
// and follows a growing file, restarting when the pointer moves to a new
// run's log. Partial trailing lines are held back until their newline lands.
package logs
