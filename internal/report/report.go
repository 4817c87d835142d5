// Package report renders statistics and viewpoints for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/stats"
)

const cellGlyph = "■"

// Summary renders whole-journal totals and streaks as one card
func Summary(t stats.Totals, s stats.Streaks) string {
	rows := []string{
		titleStyle.Render("WriteHub"),
		row("Viewpoints", humanize.Comma(int64(t.Viewpoints))),
		row("Words", humanize.Comma(int64(t.Words))),
		row("Characters", humanize.Comma(int64(t.Characters))),
		row("Categories", humanize.Comma(int64(t.Categories))),
		row("Current streak", streakStyle.Render(days(s.Current))),
		row("Longest streak", valueStyle.Render(days(s.Longest))),
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Streaks renders the streak card
func Streaks(s stats.Streaks) string {
	msg := "Write something today to start a streak."
	if s.Current > 0 {
		msg = "Keep it going!"
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Streaks"),
		row("Current", streakStyle.Render(days(s.Current))),
		row("Longest", valueStyle.Render(days(s.Longest))),
		dimStyle.Render(msg),
	))
}

// Range renders the rows of one range query with their summary
func Range(period stats.Period, from, to domain.Day, rows []domain.DailyStat) string {
	sum := stats.RangeSummary(rows)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s → %s", periodTitle(period), from, to.AddDays(-1))))
	b.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s  %s %3d viewpoints  %6s words  %s\n",
			r.Day,
			intensityStyle(r.Intensity()).Render(cellGlyph),
			r.ViewpointCount,
			humanize.Comma(int64(r.TotalWordCount)),
			dimStyle.Render(strings.Join(r.Categories, ", ")),
		)
	}
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No activity."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
		row("Viewpoints", humanize.Comma(int64(sum.Viewpoints))),
		row("Words", humanize.Comma(int64(sum.Words))),
		row("Active days", humanize.Comma(int64(sum.ActiveDays))),
		row("Avg per day", humanize.FormatFloat("#,###.##", sum.AveragePerDay)),
	))
	return b.String()
}

// Day renders a single day's stat; nil means nothing was written
func Day(day domain.Day, ds *domain.DailyStat) string {
	if ds == nil || ds.ViewpointCount == 0 {
		return fmt.Sprintf("%s  %s", titleStyle.Render(day.String()), dimStyle.Render("no viewpoints"))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(day.String()),
		row("Viewpoints", valueStyle.Render(fmt.Sprint(ds.ViewpointCount))),
		row("Words", valueStyle.Render(humanize.Comma(int64(ds.TotalWordCount)))),
		row("Characters", valueStyle.Render(humanize.Comma(int64(ds.TotalCharacterCount)))),
		row("Categories", valueStyle.Render(strings.Join(ds.Categories, ", "))),
		row("Intensity", intensityStyle(ds.Intensity()).Render(strings.Repeat(cellGlyph, ds.Intensity()))),
	))
}

// Calendar renders the contribution grid with one column per week and the
// month names above
func Calendar(g stats.Grid) string {
	const gutter = 4
	width := gutter + 2*len(g.Weeks)

	header := []rune(strings.Repeat(" ", width))
	free := 0
	for i, week := range g.Weeks {
		for _, c := range week {
			if c == nil || c.Day.Day != 1 {
				continue
			}
			col := gutter + 2*i
			label := []rune(c.Day.Month.String()[:3])
			if col >= free && col+len(label) <= width {
				copy(header[col:], label)
				free = col + len(label) + 1
			}
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d", g.Year)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.TrimRight(string(header), " ")))
	b.WriteString("\n")

	total := 0
	for wd := 0; wd < 7; wd++ {
		label := ""
		switch time.Weekday((int(stats.WeekStart) + wd) % 7) {
		case time.Monday:
			label = "Mon"
		case time.Wednesday:
			label = "Wed"
		case time.Friday:
			label = "Fri"
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-*s", gutter, label)))
		for _, week := range g.Weeks {
			c := week[wd]
			if c == nil {
				b.WriteString("  ")
				continue
			}
			total += c.Count
			b.WriteString(intensityStyle(c.Intensity).Render(cellGlyph))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	legend := make([]string, len(intensityColors))
	for i := range intensityColors {
		legend[i] = intensityStyle(i).Render(cellGlyph)
	}
	fmt.Fprintf(&b, "%s%s  %s %s %s\n",
		strings.Repeat(" ", gutter),
		dimStyle.Render(fmt.Sprintf("%s viewpoints in %d", humanize.Comma(int64(total)), g.Year)),
		dimStyle.Render("Less"), strings.Join(legend, " "), dimStyle.Render("More"))
	return b.String()
}

// Categories renders the category breakdown with proportional bars
func Categories(counts []stats.CategoryCount) string {
	top := 0
	for _, c := range counts {
		if c.Count > top {
			top = c.Count
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Categories"))
	b.WriteString("\n")
	for _, c := range counts {
		color := c.Color
		if color == "" {
			color = domain.DefaultColor
		}
		bar := 0
		if top > 0 {
			bar = c.Count * 20 / top
		}
		name := c.Name
		if !c.Known {
			name += "*"
		}
		fmt.Fprintf(&b, "%s %-16s %5d %s\n",
			lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●"),
			name,
			c.Count,
			lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", bar)),
		)
	}
	return b.String()
}

// ViewpointLine is the one-line listing form of v
func ViewpointLine(v domain.Viewpoint, now time.Time) string {
	preview := strings.Join(strings.Fields(v.Content), " ")
	if r := []rune(preview); len(r) > 60 {
		preview = string(r[:57]) + "..."
	}
	return fmt.Sprintf("%s  %-14s %-12s %s",
		valueStyle.Render(ShortID(v.ID)),
		dimStyle.Render(humanize.RelTime(v.CreatedAt, now, "ago", "from now")),
		titleStyle.Render(v.Category),
		preview,
	)
}

// ViewpointDetail renders every field of v followed by its content
func ViewpointDetail(v domain.Viewpoint, loc *time.Location) string {
	lines := []string{
		row("ID", v.ID),
		row("Category", v.Category),
		row("Created", v.CreatedAt.In(loc).Format("Mon Jan 2 2006 15:04")),
		row("Modified", v.ModifiedAt.In(loc).Format("Mon Jan 2 2006 15:04")),
		row("Words", humanize.Comma(int64(v.WordCount))),
		row("Characters", humanize.Comma(int64(v.CharacterCount))),
	}
	if len(v.Tags) > 0 {
		lines = append(lines, row("Tags", strings.Join(v.Tags, ", ")))
	}
	if v.FilePath != "" {
		lines = append(lines, row("File", v.FilePath))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n\n" + v.Content
}

// CategoryLine is the one-line listing form of c
func CategoryLine(c domain.Category) string {
	return fmt.Sprintf("%s %-16s %5d  %s",
		lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●"),
		c.Name,
		c.ViewpointCount,
		dimStyle.Render(c.Description),
	)
}

func periodTitle(p stats.Period) string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// ShortID is the display form of an id: its first 8 bytes, or all of it
// when shorter
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
