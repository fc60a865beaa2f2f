// Package ui renders terminal output: status styling, highlighted JSON and
// the interactive login form.
package ui

import (
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// DisableColor turns off all styling, e.g. for --no-color or NO_COLOR
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorDisabled reports whether NO_COLOR asks for plain output
func ColorDisabled() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

func Success(s string) string { return successStyle.Render(s) }
func Warn(s string) string    { return warnStyle.Render(s) }
func Error(s string) string   { return errorStyle.Render(s) }
func Label(s string) string   { return labelStyle.Render(s) }
func Title(s string) string   { return titleStyle.Render(s) }

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// HighlightJSON writes src to w, colorized when color is enabled
func HighlightJSON(w io.Writer, src string) error {
	if lipgloss.ColorProfile() == termenv.Ascii {
		_, err := io.WriteString(w, src)
		return err
	}
	return quick.Highlight(w, src, "json", "terminal256", "monokai")
}
