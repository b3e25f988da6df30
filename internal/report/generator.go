package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/veryresto/pingmo/internal/models"
)

// Generator creates static images and a text summary from one monitoring run
type Generator struct {
	doc models.Document
	now func() time.Time
}

// NewGenerator creates a new report generator for doc
func NewGenerator(doc models.Document) *Generator {
	return &Generator{doc: doc, now: time.Now}
}

// GenerateReport renders doc into a fresh report directory under outputDir
// and returns that directory.
func GenerateReport(outputDir string, doc models.Document) (string, error) {
	return NewGenerator(doc).GenerateReport(outputDir)
}

// GenerateReport creates the charts and summary.txt. A chart that cannot be
// rendered is logged and skipped; only directory failures are returned.
func (g *Generator) GenerateReport(outputDir string) (string, error) {
	timestamp := g.now().Format("2006-01-02_15-04-05")
	reportDir := filepath.Join(outputDir, fmt.Sprintf("pingmo_report_%s", timestamp))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := g.generateLatencyChart(reportDir); err != nil {
		log.Warn("Failed to generate latency chart", "error", err)
	}

	if err := g.generateQualityChart(reportDir); err != nil {
		log.Warn("Failed to generate quality chart", "error", err)
	}

	if err := g.generateSpikeChart(reportDir); err != nil {
		log.Warn("Failed to generate spike chart", "error", err)
	}

	if err := g.generateTextReport(reportDir); err != nil {
		log.Warn("Failed to generate text report", "error", err)
	}

	log.Info("Report generated", "dir", reportDir)
	return reportDir, nil
}
