package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/veryresto/pingmo/internal/stats"
)

const movingAveragePeriod = 10

var errTooFewPoints = errors.New("need at least two successful pings")

var (
	chartPadding = chart.Style{
		Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
	}
	axisStyle = chart.Style{
		StrokeColor: drawing.ColorBlack,
		FontSize:    10,
	}
	gridStyle = chart.Style{
		StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
		StrokeWidth: 1.0,
	}
)

type series struct {
	timestamps []time.Time
	values     []float64
}

func (g *Generator) generateLatencyChart(outputDir string) error {
	// Group data by target
	targetData := make(map[string]series)
	for _, obs := range g.doc.Results {
		latency, ok := obs.Latency()
		if !ok {
			continue
		}
		data := targetData[obs.Target]
		data.timestamps = append(data.timestamps, obs.Timestamp)
		data.values = append(data.values, latency)
		targetData[obs.Target] = data
	}

	if len(targetData) == 0 {
		return errTooFewPoints
	}

	for target, data := range targetData {
		if len(data.values) < 2 {
			return fmt.Errorf("%s: %w", target, errTooFewPoints)
		}

		ts := chart.TimeSeries{
			Name: target,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(0),
				StrokeWidth: 2,
			},
			XValues: data.timestamps,
			YValues: data.values,
		}

		graph := chart.Chart{
			Title:      fmt.Sprintf("Latency - %s", target),
			TitleStyle: chart.Style{FontSize: 16},
			Background: chartPadding,
			Width:      1200,
			Height:     400,
			XAxis: chart.XAxis{
				Name:           "Time",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle,
				ValueFormatter: chart.TimeMinuteValueFormatter,
			},
			YAxis: chart.YAxis{
				Name:           "Latency (ms)",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle,
				GridMajorStyle: gridStyle,
			},
			Series: []chart.Series{ts},
		}

		if len(data.values) > movingAveragePeriod {
			graph.Series = append(graph.Series, chart.SMASeries{
				Name: "Moving Avg",
				Style: chart.Style{
					StrokeColor:     chart.GetDefaultColor(1),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
				InnerSeries: ts,
				Period:      movingAveragePeriod,
			})
			graph.Elements = []chart.Renderable{chart.Legend(&graph)}
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("latency_%s.png", sanitizeFilename(target)))
		if err := renderPNG(filename, graph.Render); err != nil {
			return err
		}
	}

	return nil
}

func (g *Generator) generateQualityChart(outputDir string) error {
	labels := []string{"0-20ms", "20-50ms", "50-100ms", "100-200ms", ">200ms"}
	colors := []drawing.Color{
		{R: 4, G: 181, B: 117, A: 255},
		{R: 140, G: 200, B: 80, A: 255},
		{R: 255, G: 165, B: 0, A: 255},
		{R: 255, G: 100, B: 60, A: 255},
		{R: 220, G: 20, B: 60, A: 255},
	}

	var values []chart.Value
	for i, bucket := range g.doc.Summary.SpikeAnalysis.VideoConferencing.Buckets() {
		values = append(values, chart.Value{
			Label: labels[i],
			Value: float64(bucket.Count),
			Style: chart.Style{FillColor: colors[i], StrokeColor: colors[i]},
		})
	}

	return renderBars(filepath.Join(outputDir, "quality.png"), "Video Conferencing Quality", values)
}

func (g *Generator) generateSpikeChart(outputDir string) error {
	var values []chart.Value
	for _, threshold := range stats.SpikeThresholds {
		bucket, _ := g.doc.Summary.SpikeAnalysis.Spike(threshold)
		values = append(values, chart.Value{
			Label: ">=" + strconv.Itoa(threshold) + "ms",
			Value: float64(bucket.Count),
		})
	}

	return renderBars(filepath.Join(outputDir, "spikes.png"), "Latency Spikes", values)
}

func renderBars(filename, title string, values []chart.Value) error {
	// go-chart rejects an empty range, so an all-zero chart still spans [0,1]
	maxCount := 1.0
	for _, v := range values {
		if v.Value > maxCount {
			maxCount = v.Value
		}
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 16},
		Background: chartPadding,
		Width:      1200,
		Height:     400,
		BarWidth:   80,
		XAxis:      axisStyle,
		YAxis: chart.YAxis{
			Style:          axisStyle,
			GridMajorStyle: gridStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxCount},
		},
		Bars: values,
	}

	return renderPNG(filename, graph.Render)
}

func renderPNG(filename string, render func(chart.RendererProvider, io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := render(chart.PNG, file); err != nil {
		file.Close()
		os.Remove(filename)
		return err
	}
	return file.Close()
}
