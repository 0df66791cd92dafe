package common

import "github.com/charmbracelet/lipgloss"

var (
	// AppTitleStyle styles the application title. Rendered at call site with content.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FE2C55"))

	// AuthorStyle styles the video author handle.
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	// CaptionStyle styles the caption under the author.
	CaptionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// MutedStyle styles secondary text such as timestamps and hints.
	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// RailStyle frames the action rail on the right of the player.
	RailStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Align(lipgloss.Center)

	// RailActiveStyle highlights a toggled rail action (liked, following, saved).
	RailActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FE2C55")).
			Bold(true)

	// RailIdleStyle styles an untoggled rail action.
	RailIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// PausedStyle styles the paused indicator over the player.
	PausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#00000080")).
			Bold(true).
			Padding(0, 1)

	// SheetStyle frames the comments overlay.
	SheetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	// SheetHandleStyle styles the drag handle at the top of the sheet.
	SheetHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6E738D")).
				Align(lipgloss.Center)

	// CommentAuthorStyle styles comment display names.
	CommentAuthorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7DC4E4"))

	// InputBarStyle frames the comment input bar.
	InputBarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#45475A"))

	// TileStyle frames a video tile in the profile grid.
	TileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	// TileSelectedStyle frames the selected tile.
	TileSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#FE2C55")).
				Padding(0, 1)

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// ErrorStyle styles error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)
)
