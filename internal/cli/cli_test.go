package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veryresto/pingmo/internal/config"
	"github.com/veryresto/pingmo/internal/export"
	"github.com/veryresto/pingmo/internal/models"
)

type stubPinger struct {
	latencies []float64
	calls     int
	onPing    func()
}

func (s *stubPinger) Name() string { return "stub" }

func (s *stubPinger) Ping(ctx context.Context, target string) (float64, error) {
	if s.onPing != nil {
		s.onPing()
	}
	l := s.latencies[s.calls%len(s.latencies)]
	s.calls++
	if l < 0 {
		return 0, context.DeadlineExceeded
	}
	return l, nil
}

func useStubPinger(t *testing.T, latencies ...float64) *stubPinger {
	t.Helper()
	stub := &stubPinger{latencies: latencies}
	orig := newPinger
	newPinger = func(config.Config) (models.Pinger, func(), error) {
		return stub, func() {}, nil
	}
	t.Cleanup(func() { newPinger = orig })
	return stub
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Defaults()
	cfg.Interval = 50 * time.Millisecond
	cfg.Output = filepath.Join(t.TempDir(), "results.json")
	return cfg
}

func TestRunMonitorExports(t *testing.T) {
	useStubPinger(t, 10, 20, -1, 150)
	cfg := testConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 275*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, runMonitor(ctx, cfg, &out))

	doc, err := export.Load(cfg.Output)
	require.NoError(t, err)
	assert.InDelta(t, 6, doc.Summary.TotalPings, 2)
	assert.Len(t, doc.Results, doc.Summary.TotalPings)
	assert.Equal(t, doc.Summary.TotalPings, doc.Summary.SuccessfulPings+doc.Summary.FailedPings)
	assert.Equal(t, "1.1.1.1", doc.Summary.Target)
	require.NotEmpty(t, doc.Results)
	assert.True(t, doc.Summary.MonitoringStarted.Equal(doc.Results[0].Timestamp), "run starts at the first attempt")
	assert.Contains(t, out.String(), "Success rate")
}

func TestRunMonitorInvalidConfig(t *testing.T) {
	stub := useStubPinger(t, 10)
	cfg := testConfig(t)
	cfg.Interval = 0

	err := runMonitor(context.Background(), cfg, &bytes.Buffer{})
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Zero(t, stub.calls, "no sampling on invalid configuration")
	assert.NoFileExists(t, cfg.Output)
}

func TestRunMonitorUnwritableOutput(t *testing.T) {
	stub := useStubPinger(t, 10)
	cfg := testConfig(t)
	cfg.Output = filepath.Join(t.TempDir(), "missing", "results.json")

	err := runMonitor(context.Background(), cfg, &bytes.Buffer{})
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Zero(t, stub.calls)
}

func TestRunMonitorArchiveAndExport(t *testing.T) {
	useStubPinger(t, 10, 20, 30, 100, 250)
	cfg := testConfig(t)
	cfg.DatabasePath = filepath.Join(t.TempDir(), "pingmo.db")
	cfg.Listen = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 240*time.Millisecond)
	defer cancel()
	require.NoError(t, runMonitor(ctx, cfg, &bytes.Buffer{}))

	live, err := export.Load(cfg.Output)
	require.NoError(t, err)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"runs", "--db", cfg.DatabasePath})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "1.1.1.1")

	db, err := openDatabase(cfg.DatabasePath)
	require.NoError(t, err)
	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NoError(t, db.Close())

	rebuilt := filepath.Join(t.TempDir(), "rebuilt.json")
	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"export", "--db", cfg.DatabasePath, "--run", runs[0].ID, "-o", rebuilt})
	require.NoError(t, root.Execute())

	doc, err := export.Load(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, live.Summary.TotalPings, doc.Summary.TotalPings)
	assert.Equal(t, live.Summary.SuccessfulPings, doc.Summary.SuccessfulPings)
	assert.Equal(t, live.Summary.SpikeAnalysis.Above100ms.Count, doc.Summary.SpikeAnalysis.Above100ms.Count)
}

func TestExportRequiresFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"export", "--db", filepath.Join(t.TempDir(), "x.db")})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--run")
}

func TestExportUnknownRun(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"export", "--db", filepath.Join(t.TempDir(), "x.db"), "--run", "nope"})
	assert.Error(t, root.Execute())
}

func TestChartCommand(t *testing.T) {
	useStubPinger(t, 10, 20, 30, 100, 250)
	cfg := testConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, runMonitor(ctx, cfg, &bytes.Buffer{}))

	dir := t.TempDir()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"chart", cfg.Output, "-d", dir})
	require.NoError(t, root.Execute())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.FileExists(t, filepath.Join(dir, entries[0].Name(), "summary.txt"))
	assert.Contains(t, out.String(), "Report:")
}

func TestChartCommandMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"summary": {}}`), 0o644))

	dir := t.TempDir()
	root := NewRootCmd()
	root.SetArgs([]string{"chart", path, "-d", dir})
	err := root.Execute()
	require.ErrorIs(t, err, export.ErrMalformed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing rendered")
}

func TestRunMonitorExportFailure(t *testing.T) {
	stub := useStubPinger(t, 10, 20, 30)
	cfg := testConfig(t)
	outDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))
	cfg.Output = filepath.Join(outDir, "results.json")
	cfg.DatabasePath = filepath.Join(t.TempDir(), "pingmo.db")

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	// The output directory disappears after the pre-flight check.
	stub.onPing = func() { os.RemoveAll(outDir) }

	ctx, cancel := context.WithTimeout(context.Background(), 175*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := runMonitor(ctx, cfg, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export failed")
	assert.NoFileExists(t, cfg.Output)
	assert.Empty(t, out.String(), "no summary after a failed export")
	assert.Contains(t, logs.String(), "lost="+strconv.Itoa(stub.calls))
	assert.Contains(t, logs.String(), "pingmo export --db "+cfg.DatabasePath)

	db, err := openDatabase(cfg.DatabasePath)
	require.NoError(t, err)
	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].EndedAt, "run is finished despite the failed export")

	recovered := filepath.Join(t.TempDir(), "recovered.json")
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"export", "--db", cfg.DatabasePath, "--run", runs[0].ID, "-o", recovered})
	require.NoError(t, root.Execute())

	doc, err := export.Load(recovered)
	require.NoError(t, err)
	assert.Equal(t, stub.calls, doc.Summary.TotalPings)
	assert.Equal(t, stub.calls, doc.Summary.SuccessfulPings)
}
