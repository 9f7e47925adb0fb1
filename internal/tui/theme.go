package tui

import "github.com/charmbracelet/lipgloss"

// ────────────────────────────────────────────────────────────
// Color Palette — GitHub Dark aesthetic
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")
	colorCyan   = lipgloss.Color("#76e3ea")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	headerPlayingStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	headerPausedStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)
)

// Panel chrome
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorDivider)

	panelActiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorBlue)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	panelTitleDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Bold(true)
)

// Stage
var (
	stageBoxStyle = lipgloss.NewStyle().
			Foreground(colorText)

	stageDimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	stageFaintStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	stageSelectedStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)
)

// Widget tree
var (
	widgetNormalStyle = lipgloss.NewStyle().
				Foreground(colorText)

	widgetSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	kindTextStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	kindValueStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	kindToggleStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	kindContainerStyle = lipgloss.NewStyle().
				Foreground(colorCyan)

	kindPlainStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	treeBranchStyle = lipgloss.NewStyle().
			Foreground(colorDivider)
)

// Inspector
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(colorDivider)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Timeline lanes
var (
	laneKeyframeStyle = lipgloss.NewStyle().
				Foreground(colorPurple)

	laneEmptyStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	lanePlayheadStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)
)

// Journal
var (
	writeTimelineStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	writeTaskStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	diagStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	journalTickStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Background(colorBgSurface).
			Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(1, 2)
)

