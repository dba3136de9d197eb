package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	Teal      = lipgloss.Color("#00B4A6")
	LightTeal = lipgloss.Color("#5FE3D6")
	DeepTeal  = lipgloss.Color("#00756C")
	DimTeal   = lipgloss.Color("#0F3D3A")
	Amber     = lipgloss.Color("#FFB000")
	Coral     = lipgloss.Color("#FF6F61")
	Green     = lipgloss.Color("#3DDC84")
	MidGray   = lipgloss.Color("#4a4a5a")
	LightGray = lipgloss.Color("#aaaaaa")
	White     = lipgloss.Color("#e8e8e8")
	Black     = lipgloss.Color("#0b0b10")

	TitleStyle = lipgloss.NewStyle().
			Foreground(LightTeal).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	StatusBarStyle = lipgloss.NewStyle().
			Background(DeepTeal).
			Foreground(Black).
			Bold(true).
			Padding(0, 1)

	StatusStoreStyle = lipgloss.NewStyle().
				Background(Teal).
				Foreground(Black).
				Bold(true).
				Padding(0, 1)

	RoleHeaderStyle = lipgloss.NewStyle().Bold(true)

	UserBlockStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Green).
			PaddingLeft(1).
			MarginBottom(1)

	UserMsgStyle = lipgloss.NewStyle().
			Foreground(White)

	BotBlockStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Teal).
			PaddingLeft(1).
			MarginBottom(1)

	BotMsgStyle = lipgloss.NewStyle().
			Foreground(White)

	// Teaching prompt and input while teaching
	TeachStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	TeachInputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber).
			Padding(0, 1)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DeepTeal).
			Padding(0, 1)

	ViewportStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	SystemMsgStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Coral).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MidGray)

	MenuBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Teal).
			Padding(0, 1)
)
