package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rasheuristics/CalAI-sub003/internal/timeline"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	layout := m.activeLayout()
	var b strings.Builder

	b.WriteString(m.renderHeader(layout))
	b.WriteString("\n")

	if len(layout.AllDay) > 0 {
		b.WriteString(m.renderAllDay(layout))
		b.WriteString("\n")
	}

	body := m.renderSegments(layout)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader(layout timeline.DayLayout) string {
	title := layout.Day.Format("Monday, 2 January 2006")
	if m.car != nil {
		prev := layout.Day.AddDate(0, 0, -1).Format("Mon 2")
		next := layout.Day.AddDate(0, 0, 1).Format("Mon 2")
		title = fmt.Sprintf("%s  <  %s  >  %s", m.styles.muted.Render(prev), m.styles.header.Render(title), m.styles.muted.Render(next))
		return title
	}
	return m.styles.header.Render(title)
}

func (m Model) renderAllDay(layout timeline.DayLayout) string {
	parts := make([]string, 0, len(layout.AllDay))
	for _, ev := range layout.AllDay {
		label := ev.Title
		if label == "" {
			label = "(untitled)"
		}
		style := lipgloss.NewStyle().Foreground(m.theme.sourceColor(ev.Source))
		parts = append(parts, style.Render("■ "+label))
	}
	return m.styles.allDayBar.Render("all-day  ") + strings.Join(parts, "  ")
}

func (m Model) renderSegments(layout timeline.DayLayout) string {
	params := m.service.Builder().Params()
	lines := make([]string, 0, len(layout.Segments))

	for i, seg := range layout.Segments {
		var line string
		if seg.IsGap() {
			line = m.renderGap(seg, params)
		} else {
			line = m.renderEvent(seg)
		}
		if i == m.selected {
			line = m.styles.selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		lines = append(lines, m.styles.muted.Render("  (empty day)"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderGap(seg timeline.Segment, params timeline.LayoutParams) string {
	span := fmt.Sprintf("%s - %s", seg.Start.Format("15:04"), seg.End.Format("15:04"))
	dur := formatDuration(seg.Duration())

	if seg.Collapsible(params) && !seg.Expanded {
		return m.styles.gapChip.Render(fmt.Sprintf(" %s  %s free  [expand] ", span, dur))
	}

	rows := gapRows(seg, params)
	label := m.styles.gapOpen.Render(fmt.Sprintf("%s  %s free", span, dur))
	if rows <= 1 {
		return label
	}
	filler := m.styles.gapOpen.Render("·")
	return label + strings.Repeat("\n  "+filler, rows-1)
}

func (m Model) renderEvent(seg timeline.Segment) string {
	ev := seg.Event
	title := ev.Title
	if title == "" {
		title = "(untitled)"
	}

	span := fmt.Sprintf("%s - %s", seg.Start.Format("15:04"), seg.End.Format("15:04"))
	indent := strings.Repeat("  ", seg.Lane)
	style := lipgloss.NewStyle().Foreground(m.theme.sourceColor(ev.Source))

	line := fmt.Sprintf("%s%s %s", indent, span, style.Render(title))
	if ev.Location != "" {
		line += m.styles.muted.Render(" @ " + ev.Location)
	}
	if ev.ClampedEnd {
		line += m.styles.muted.Render(" >")
	}

	// Live preview while this event is being moved.
	if m.moveSession != nil && m.moveEventID == ev.ID {
		p := m.moveSession.Preview()
		line += m.styles.preview.Render(fmt.Sprintf("  -> %s - %s", p.Start.Format("Mon 15:04"), p.End.Format("15:04")))
	} else if off, ok := m.drags.ParkedOffset(ev.ID); ok && off != 0 {
		line += m.styles.muted.Render("  (moved)")
	}

	return line
}

func (m Model) renderFooter() string {
	help := "j/k select  enter toggle gap  m move  h/l day  H/L swipe  t today  q quit"
	if m.moveSession != nil {
		help = "arrows adjust  enter drop  esc cancel"
	}
	line := m.styles.footer.Render(help)
	if m.status != "" {
		line += "  " + m.styles.footer.Render("| "+m.status)
	}
	if m.err != nil {
		line += "  " + m.styles.selected.Render(fmt.Sprintf("| error: %v", m.err))
	}
	return line
}

// gapRows converts an expanded gap's layout height into terminal rows,
// one row per half hour, capped to keep long gaps manageable.
func gapRows(seg timeline.Segment, params timeline.LayoutParams) int {
	rows := int(seg.Height(params) / (30 * params.PxPerMinute))
	if rows < 1 {
		rows = 1
	}
	if rows > 6 {
		rows = 6
	}
	return rows
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, mins)
	}
}
