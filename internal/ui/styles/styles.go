package styles

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolArrow   = "→"
)

var forceNoColor atomic.Bool

// SetNoColor disables colors regardless of the environment
func SetNoColor(v bool) {
	forceNoColor.Store(v)
}

// NoColor checks if colors should be disabled
func NoColor() bool {
	return forceNoColor.Load() || os.Getenv("NO_COLOR") != "" || os.Getenv("RELSTAMP_NO_COLOR") != ""
}

// Base text styles
var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Foreground(Muted)
)

// Semantic styles - use these instead of raw colors
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel).Bold(true)
	AnnotatedText = lipgloss.NewStyle().Foreground(ColorAnnotated)
	SkippedText   = lipgloss.NewStyle().Foreground(ColorSkipped)

	DiffAddLine     = lipgloss.NewStyle().Foreground(ColorDiffAdd)
	DiffRemoveLine  = lipgloss.NewStyle().Foreground(ColorDiffRemove)
	DiffContextLine = lipgloss.NewStyle().Foreground(ColorDiffContext)
	DiffHunkHeader  = lipgloss.NewStyle().Foreground(ColorDiffHunk)
)

// render applies a style if colors are enabled
func render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// Label formats a relative-time label
func Label(text string) string {
	return render(LabelStyle, text)
}

// Header formats a file header line
func Header(text string) string {
	return render(Bold, text)
}

// HunkHeader formats a diff hunk header
func HunkHeader(text string) string {
	return render(DiffHunkHeader, text)
}

// Count formats "<n> annotated" / "<n> skipped" style counters
func Count(n int, what string) string {
	s := fmt.Sprintf("%d %s", n, what)
	switch {
	case n == 0:
		return render(MutedStyle, s)
	case what == "skipped":
		return render(SkippedText, s)
	default:
		return render(AnnotatedText, s)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", render(WarningStyle, symbol), msg)
}

// InfoMsg formats an info message
func InfoMsg(msg string) string {
	return render(InfoStyle, msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return render(MutedStyle, msg)
}

// Indent returns text indented by n spaces
func Indent(text string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func Green(s string) string { return render(DiffAddLine, s) }
func Red(s string) string   { return render(DiffRemoveLine, s) }
func Mute(s string) string  { return render(DiffContextLine, s) }
func Cyan(s string) string  { return render(InfoStyle, s) }

func Mutef(format string, a ...any) string { return Mute(fmt.Sprintf(format, a...)) }
func Cyanf(format string, a ...any) string { return Cyan(fmt.Sprintf(format, a...)) }
