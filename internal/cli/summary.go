package cli

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/andyrewlee/typeahead/internal/typeahead"
)

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorMuted   = lipgloss.Color("#565f89")
)

type summary struct {
	title    string
	latency  typeahead.LatencyStats
	accuracy float64
	samples  int
	disabled bool
}

func summaryFromStats(title string, e *typeahead.Engine) summary {
	s := summary{title: title}
	if stats := e.Stats(); stats != nil {
		s.latency = stats.Latency()
		s.accuracy = stats.Accuracy()
		s.samples = stats.SampleSize()
	}
	if tl := e.Timeline(); tl != nil {
		s.disabled = tl.Disabled()
	}
	return s
}

func accuracyColor(accuracy float64) color.Color {
	switch {
	case accuracy >= 0.9:
		return colorSuccess
	case accuracy >= 0.5:
		return colorWarning
	default:
		return colorError
	}
}

func formatLatency(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// renderSummary draws the prediction stats in a rounded box.
func renderSummary(s summary) string {
	label := lipgloss.NewStyle().Foreground(colorMuted).Width(10)
	value := lipgloss.NewStyle().Bold(true)

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("typeahead: " + s.title),
		"",
		label.Render("samples") + value.Render(strconv.Itoa(s.samples)),
	}
	if s.samples == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorMuted).Render("no predictions were resolved"))
	} else {
		accuracy := value.Foreground(accuracyColor(s.accuracy)).Render(fmt.Sprintf("%.0f%%", s.accuracy*100))
		lines = append(lines, label.Render("accuracy")+accuracy)
	}
	if s.latency.Count > 0 {
		lines = append(lines, label.Render("latency")+value.Render(fmt.Sprintf("min %s  median %s  max %s",
			formatLatency(s.latency.Min), formatLatency(s.latency.Median), formatLatency(s.latency.Max))))
	}
	if s.disabled {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorWarning).Render("predictions were turned off after an inconsistency; see the log"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
