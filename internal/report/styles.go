package report

import "github.com/charmbracelet/lipgloss"

var (
	colorText    = lipgloss.Color("#e6edf3")
	colorSubtext = lipgloss.Color("#8b949e")
	colorAccent  = lipgloss.Color("#58a6ff")
	colorBorder  = lipgloss.Color("#30363d")
	colorWarm    = lipgloss.Color("#f0883e")
)

// intensityColors index by domain.Intensity, empty to busiest
var intensityColors = [5]lipgloss.Color{
	lipgloss.Color("#2d333b"),
	lipgloss.Color("#0e4429"),
	lipgloss.Color("#006d32"),
	lipgloss.Color("#26a641"),
	lipgloss.Color("#39d353"),
}

var (
	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)

	streakStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarm)

	dimStyle = lipgloss.NewStyle().Foreground(colorSubtext)
)

func intensityStyle(level int) lipgloss.Style {
	if level < 0 {
		level = 0
	}
	if level >= len(intensityColors) {
		level = len(intensityColors) - 1
	}
	return lipgloss.NewStyle().Foreground(intensityColors[level])
}
