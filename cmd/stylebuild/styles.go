// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple - titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray - secondary text and line numbers.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green - emitted files.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red - failures.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber - skipped or ignored files.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue - paths and specifiers.
	ColorHighlight = lipgloss.Color("#3B82F6")
	// ColorVerbose is light gray - debug details.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings and files that produced no output.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// PathStyle is for file paths and import specifiers.
	PathStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle is for supplementary information.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	// excerptGutterStyle renders line numbers in source excerpts.
	excerptGutterStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	// excerptCurrentStyle marks the failing line of an excerpt.
	excerptCurrentStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorError)

	// caretStyle renders the column marker under the failing line.
	caretStyle = lipgloss.NewStyle().
			Foreground(ColorError)
)
