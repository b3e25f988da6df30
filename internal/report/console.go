package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/veryresto/pingmo/internal/models"
	"github.com/veryresto/pingmo/internal/stats"
)

var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	colorAmber  = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFA500"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#FF4672"}
	colorSubtle = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#7B2FBE", Dark: "#B97EFF"})
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorSubtle).Width(24)
)

// PrintSummary writes a human-readable summary of one run to w
func PrintSummary(w io.Writer, s models.Summary) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pingmo summary: "+s.Target) + "\n")
	row(&b, "Period", fmt.Sprintf("%s to %s (%s)",
		s.MonitoringStarted.Format("15:04:05"),
		s.MonitoringEnded.Format("15:04:05"),
		strings.TrimSpace(humanize.RelTime(s.MonitoringStarted, s.MonitoringEnded, "", ""))))
	row(&b, "Pings", fmt.Sprintf("%s sent, %s ok, %s failed",
		humanize.Comma(int64(s.TotalPings)),
		humanize.Comma(int64(s.SuccessfulPings)),
		humanize.Comma(int64(s.FailedPings))))
	row(&b, "Success rate", rateStyle(s.SuccessRate).Render(fmt.Sprintf("%.2f%%", s.SuccessRate)))

	b.WriteString("\n" + sectionStyle.Render("Latency") + "\n")
	row(&b, "Average", formatMS(s.AvgLatencyMS))
	row(&b, "Median", formatMS(s.MedianLatencyMS))
	row(&b, "Min / Max", formatMS(s.MinLatencyMS)+" / "+formatMS(s.MaxLatencyMS))
	row(&b, "Std dev", formatMS(s.StdDevLatencyMS))
	row(&b, "P95 / P99", formatMS(s.P95LatencyMS)+" / "+formatMS(s.P99LatencyMS))

	b.WriteString("\n" + sectionStyle.Render("Spikes") + "\n")
	for _, threshold := range stats.SpikeThresholds {
		spike, _ := s.SpikeAnalysis.Spike(threshold)
		row(&b, fmt.Sprintf(">= %dms", threshold),
			fmt.Sprintf("%s (%.2f%%)", humanize.Comma(int64(spike.Count)), spike.Percentage))
	}

	b.WriteString("\n" + sectionStyle.Render("Video conferencing quality") + "\n")
	for i, band := range s.SpikeAnalysis.VideoConferencing.Buckets() {
		row(&b, bandLabels[i], fmt.Sprintf("%s (%.2f%%)", humanize.Comma(int64(band.Count)), band.Percentage))
	}

	fmt.Fprint(w, b.String())
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label) + value + "\n")
}

func rateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 99:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case rate >= 95:
		return lipgloss.NewStyle().Foreground(colorAmber)
	default:
		return lipgloss.NewStyle().Foreground(colorRed)
	}
}
