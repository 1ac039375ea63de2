package theme

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles the terminal UI draws with.
type Styles struct {
	App         lipgloss.Style
	Header      lipgloss.Style
	Description lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	TabCount    lipgloss.Style
	Editor      lipgloss.Style
	Results     lipgloss.Style
	Chip        lipgloss.Style
	Sum         lipgloss.Style
	Muted       lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// NewStyles builds the UI styles for t.
func NewStyles(t Theme) Styles {
	c := t.Colors
	return Styles{
		App: lipgloss.NewStyle().
			Foreground(c.Text).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(c.Primary).
			Bold(true),
		Description: lipgloss.NewStyle().
			Foreground(c.Muted),
		Tab: lipgloss.NewStyle().
			Foreground(c.Muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(c.Surface).
			Background(c.Primary).
			Bold(true).
			Padding(0, 1),
		TabCount: lipgloss.NewStyle().
			Foreground(c.Secondary),
		Editor: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Secondary),
		Results: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Accent).
			Padding(0, 1),
		Chip: lipgloss.NewStyle().
			Foreground(c.Text).
			Background(c.LightBg).
			Padding(0, 1).
			MarginRight(1),
		Sum: lipgloss.NewStyle().
			Foreground(c.Accent).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(c.Muted).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(c.Error).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(c.Muted),
	}
}
