// Package ui decides how the operator report is written: styled for a
// color terminal, plain text when piped or asked for, or JSON.
package ui

import (
	"io"
	"os"
)

// Resolve turns FormatAuto into a concrete format for w. Writers that are
// not files are treated as plain text.
func Resolve(format Format, w io.Writer) Format {
	if format != FormatAuto {
		return format
	}
	if file, ok := w.(*os.File); ok {
		return DetectFormat(file)
	}
	return FormatText
}
