package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// statusKind classifies one line of conversion output.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusClamped
	statusSkipped
	statusError
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiGray    = "\x1b[90m"
)

// statusLabelWidth fits a typical shot file name such as "A001C003_210415_R1AB.ccc".
const (
	statusLabelWidth = 28
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct {
	tag   string
	color string
}{
	statusInfo:    {"INFO", ansiBlue},
	statusOK:      {"OK", ansiGreen},
	statusWarn:    {"WARN", ansiYellow},
	statusClamped: {"CLAMPED", ansiMagenta},
	statusSkipped: {"SKIP", ansiGray},
	statusError:   {"ERROR", ansiRed},
}

// renderStatusLine formats "<label>: [TAG] message" with the label padded so
// tags line up across inputs and their outputs.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	line := fmt.Sprintf("%s%-*s [%s]", statusIndent, statusLabelWidth, label+":", style.tag)
	if message != "" {
		line += " " + message
	}
	if !colorize {
		return line
	}
	return style.color + line + ansiReset
}

// jobStatus picks the input line kind. Clamped values outrank range
// findings since the written grade no longer matches the source.
func jobStatus(clamped, findings int) statusKind {
	switch {
	case clamped > 0:
		return statusClamped
	case findings > 0:
		return statusWarn
	default:
		return statusOK
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
