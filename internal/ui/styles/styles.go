package styles

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary        = lipgloss.Color("#5DADE2")
	ColorSecondary      = lipgloss.Color("#82E0AA")
	ColorWarning        = lipgloss.Color("#F4D03F")
	ColorError          = lipgloss.Color("#E74C3C")
	ColorMuted          = lipgloss.Color("#7F8C8D")
	ColorForeground     = lipgloss.Color("#ECF0F1")
	ColorHealthOK       = lipgloss.Color("#2ECC71")
	ColorHealthDegraded = lipgloss.Color("#F39C12")
	ColorHealthDown     = lipgloss.Color("#E74C3C")
	ColorDarkBg         = lipgloss.Color("#2C3E50")
	ColorRowAlt         = lipgloss.Color("#1A252F")
)

// Text Styles
var (
	// Muted text style
	Muted = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Pane styles
var (
	PaneBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted)

	FocusedPaneBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// Title styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)
)

// Tab styles
var (
	ActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorDarkBg).
			Padding(0, 2)

	InactiveTab = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 2)
)

// Status badge styles
var (
	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHealthOK)

	StatusDegraded = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHealthDegraded)

	StatusDown = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHealthDown)
)

// Bottom bar styles
var (
	BottomBar = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Background(ColorDarkBg).
			Padding(0, 1)

	HintKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HintDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Row tone styles
var (
	ToneWarn  = lipgloss.NewStyle().Foreground(ColorWarning)
	ToneError = lipgloss.NewStyle().Foreground(ColorError)
)

// Input styles
var (
	InputPrompt = lipgloss.NewStyle().Foreground(ColorPrimary)
)

// Help overlay styles
var (
	HelpOverlay = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	HelpTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	HelpSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			MarginTop(1)
)

// Table/List styles
var (
	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(ColorMuted)

	TableRow = lipgloss.NewStyle().
			Foreground(ColorForeground)

	TableRowAlt = lipgloss.NewStyle().
			Foreground(ColorForeground).
			Background(ColorRowAlt)
)

// Label styles
var (
	LabelKey = lipgloss.NewStyle().
			Foreground(ColorMuted)

	LabelValue = lipgloss.NewStyle().
			Foreground(ColorForeground)
)
