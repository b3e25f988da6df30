package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veryresto/pingmo/internal/models"
	"github.com/veryresto/pingmo/internal/stats"
)

// minOutageLength is the number of consecutive failures reported as an outage.
const minOutageLength = 3

// outage is a run of consecutive failed pings
type outage struct {
	start, end time.Time
	failed     int
}

func (g *Generator) generateTextReport(outputDir string) error {
	filename := filepath.Join(outputDir, "summary.txt")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	writeTextReport(file, g.doc, g.now())
	return file.Close()
}

func writeTextReport(w io.Writer, doc models.Document, generated time.Time) {
	s := doc.Summary

	fmt.Fprintf(w, "Latency Monitoring Report\n")
	fmt.Fprintf(w, "Generated: %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Period: %s - %s (%s)\n\n",
		s.MonitoringStarted.Format("2006-01-02 15:04:05"),
		s.MonitoringEnded.Format("2006-01-02 15:04:05"),
		s.MonitoringEnded.Sub(s.MonitoringStarted).Round(time.Second))
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintln(w, "\nOVERALL STATISTICS")
	fmt.Fprintf(w, "Target: %s\n", s.Target)
	fmt.Fprintf(w, "  Interval: %gs\n", s.IntervalSeconds)
	fmt.Fprintf(w, "  Total Pings: %d\n", s.TotalPings)
	fmt.Fprintf(w, "  Successful: %d (%.2f%%)\n", s.SuccessfulPings, s.SuccessRate)
	fmt.Fprintf(w, "  Failed: %d\n", s.FailedPings)
	if s.AvgLatencyMS != nil {
		fmt.Fprintf(w, "  Average RTT: %s\n", formatMS(s.AvgLatencyMS))
		fmt.Fprintf(w, "  Median RTT: %s\n", formatMS(s.MedianLatencyMS))
		fmt.Fprintf(w, "  Min RTT: %s\n", formatMS(s.MinLatencyMS))
		fmt.Fprintf(w, "  Max RTT: %s\n", formatMS(s.MaxLatencyMS))
		fmt.Fprintf(w, "  Std Dev: %s\n", formatMS(s.StdDevLatencyMS))
		fmt.Fprintf(w, "  P95: %s\n", formatMS(s.P95LatencyMS))
		fmt.Fprintf(w, "  P99: %s\n", formatMS(s.P99LatencyMS))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintln(w, "\nLATENCY SPIKES")
	for _, threshold := range stats.SpikeThresholds {
		b, _ := s.SpikeAnalysis.Spike(threshold)
		fmt.Fprintf(w, "  >= %dms: %d (%.2f%%)\n", threshold, b.Count, b.Percentage)
	}

	fmt.Fprintln(w, "\nVIDEO CONFERENCING QUALITY")
	for i, b := range s.SpikeAnalysis.VideoConferencing.Buckets() {
		fmt.Fprintf(w, "  %-22s %d (%.2f%%)\n", bandLabels[i]+":", b.Count, b.Percentage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nOUTAGE PERIODS (%d+ consecutive failures)\n", minOutageLength)
	outages := findOutages(doc.Results)
	for i, o := range outages {
		fmt.Fprintf(w, "Outage #%d\n", i+1)
		fmt.Fprintf(w, "  Start: %s\n", o.start.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  End: %s\n", o.end.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  Duration: %s\n", o.end.Sub(o.start))
		fmt.Fprintf(w, "  Failed Checks: %d\n", o.failed)
		fmt.Fprintln(w)
	}

	if len(outages) == 0 {
		fmt.Fprintln(w, "No significant outages detected.")
	} else {
		fmt.Fprintf(w, "\nTotal Outages: %d\n", len(outages))
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

var bandLabels = []string{
	"Excellent (<20ms)",
	"Good (20-50ms)",
	"Acceptable (50-100ms)",
	"Poor (100-200ms)",
	"Very poor (>=200ms)",
}

// findOutages returns runs of at least minOutageLength consecutive failures
func findOutages(results []models.Observation) []outage {
	var outages []outage
	var current outage

	flush := func() {
		if current.failed >= minOutageLength {
			outages = append(outages, current)
		}
		current = outage{}
	}

	for _, obs := range results {
		if obs.Success {
			flush()
			continue
		}
		if current.failed == 0 {
			current.start = obs.Timestamp
		}
		current.end = obs.Timestamp
		current.failed++
	}
	flush()

	return outages
}

func formatMS(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f ms", *v)
}
