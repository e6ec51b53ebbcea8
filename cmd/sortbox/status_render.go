package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"sortbox/internal/history"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

type statusStyle struct {
	label string
	attrs []color.Attribute
}

var statusStyles = map[statusKind]statusStyle{
	statusInfo:  {"INFO", []color.Attribute{color.FgBlue}},
	statusOK:    {"OK", []color.Attribute{color.FgGreen}},
	statusWarn:  {"WARN", []color.Attribute{color.FgYellow}},
	statusError: {"ERROR", []color.Attribute{color.FgRed, color.Bold}},
}

// renderStatusLine formats "  Label:   [OK] message", colored by kind.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	badge := "[" + statusStyles[kind].label + "]"
	if message != "" {
		badge += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", badge)
	return paint(kind, line, colorize)
}

// paint colors s for kind. Whether to color is decided by shouldColorize, so
// color's own terminal detection is overridden.
func paint(kind statusKind, s string, colorize bool) string {
	if !colorize {
		return s
	}
	c := color.New(statusStyles[kind].attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// historyStatusKind maps a journal status onto a display color.
func historyStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusMoved:
		return statusOK
	case history.StatusSkipped:
		return statusInfo
	case history.StatusPartial:
		return statusWarn
	default:
		return statusError
	}
}

func colorizeStatus(status history.Status, colorize bool) string {
	return paint(historyStatusKind(status), string(status), colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(line))
	return []string{paint(statusInfo, line, colorize), paint(statusInfo, rule, colorize)}
}

func shouldColorize(writer io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
