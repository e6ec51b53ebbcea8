// Package fileutil implements the copy half of cross-volume moves: verified
// single-file copies and directory tree copies with digest verification.
package fileutil
