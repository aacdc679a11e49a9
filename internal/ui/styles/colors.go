package styles

import "github.com/charmbracelet/lipgloss"

// Dark mode optimized, semantic colors
var (
	Accent  = lipgloss.Color("#7C3AED") // violet-500 - highlights, hunk headers
	Success = lipgloss.Color("#10B981") // emerald-500 - success, additions
	Warning = lipgloss.Color("#F59E0B") // amber-500 - warnings, skipped elements
	Error   = lipgloss.Color("#EF4444") // red-500 - errors, deletions
	Info    = lipgloss.Color("#3B82F6") // blue-500 - labels, urls
	Muted   = lipgloss.Color("#6B7280") // gray-500 - secondary text
)

// Semantic color aliases
var (
	ColorAnnotated = Success
	ColorSkipped   = Warning
	ColorLabel     = Info

	ColorDiffAdd     = Success
	ColorDiffRemove  = Error
	ColorDiffContext = Muted
	ColorDiffHunk    = Accent
)
