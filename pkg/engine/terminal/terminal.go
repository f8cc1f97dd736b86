// Package terminal answers questions about the output stream the CLI writes to.
package terminal

import (
	"os"

	"golang.org/x/term"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Output describes a destination file.
type Output struct {
	f *os.File
}

// Stdout returns the Output for os.Stdout.
func Stdout() Output {
	return Output{f: os.Stdout}
}

// For wraps an arbitrary file.
func For(f *os.File) Output {
	return Output{f: f}
}

// IsTerminal reports whether the output is an interactive terminal.
// Colour codes should only be written when this is true.
func (o Output) IsTerminal() bool {
	if o.f == nil {
		return false
	}
	return term.IsTerminal(int(o.f.Fd()))
}

// Size returns the terminal width and height.
// Falls back to defaults if the size cannot be determined (pipes, files).
func (o Output) Size() (width, height int) {
	if o.f == nil {
		return DefaultWidth, DefaultHeight
	}
	width, height, err := term.GetSize(int(o.f.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return width, height
}

// Fits reports whether a block of cols x rows characters fits without wrapping.
func (o Output) Fits(cols, rows int) bool {
	w, h := o.Size()
	return cols <= w && rows <= h
}
