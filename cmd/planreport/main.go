// Command planreport renders the recorded cycles of one planner run into
// a static HTML report: cycle durations, obstacle counts, and a status
// breakdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/M-Vagrant/apollo/internal/db"
	"github.com/M-Vagrant/apollo/internal/planning"
	storage "github.com/M-Vagrant/apollo/internal/storage/sqlite"
)

var (
	dbFile   = flag.String("db", "planning_data.db", "Path to the SQLite database file")
	runID    = flag.String("run", "", "Run id to report on (default: most recent run)")
	outFile  = flag.String("out", "planning_report.html", "Output HTML file")
	maxCount = flag.Int("limit", 500, "Maximum number of cycles to chart")
)

func main() {
	flag.Parse()

	database, err := db.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open planning database: %v", err)
	}
	defer database.Close()

	store := storage.NewCycleStore(database.DB)
	ctx := context.Background()

	run := *runID
	if run == "" {
		run, err = store.LatestRunID(ctx)
		if err != nil {
			log.Fatalf("Failed to resolve latest run: %v", err)
		}
	}

	summary, err := store.Summarize(ctx, run)
	if err != nil {
		log.Fatalf("Failed to summarize run %s: %v", run, err)
	}
	if summary.Cycles == 0 {
		log.Fatalf("No cycles recorded for run %s", run)
	}

	recs, err := store.ListCycles(ctx, run, *maxCount)
	if err != nil {
		log.Fatalf("Failed to load cycles for run %s: %v", run, err)
	}

	page := buildReport(summary, recs)

	f, err := os.Create(*outFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		log.Fatalf("Failed to render report: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	log.Printf("Report for run %s (%d cycles, %d failed) written to %s",
		run, summary.Cycles, summary.Failed, *outFile)
}

func buildReport(summary *storage.RunSummary, recs []*planning.CycleRecord) *components.Page {
	seqs := make([]string, 0, len(recs))
	durations := make([]opts.LineData, 0, len(recs))
	counts := make([]opts.BarData, 0, len(recs))
	for _, rec := range recs {
		seqs = append(seqs, strconv.FormatUint(uint64(rec.Seq), 10))
		durations = append(durations, opts.LineData{Value: rec.DurationMS})
		counts = append(counts, opts.BarData{Value: rec.ObstacleCount})
	}

	subtitle := fmt.Sprintf("run=%s cycles=%d failed=%d avg=%.2fms max=%.2fms window=%s..%s",
		summary.RunID, summary.Cycles, summary.Failed,
		summary.AvgDurationMS, summary.MaxDurationMS,
		summary.StartedAt.UTC().Format("15:04:05"), summary.CompletedAt.UTC().Format("15:04:05"))

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Planning Run Report", Theme: "dark", Width: "1200px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cycle duration", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seq"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	line.SetXAxis(seqs).
		AddSeries("duration_ms", durations,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Obstacles per cycle"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seq"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	bar.SetXAxis(seqs).AddSeries("obstacles", counts)

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cycle status"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("status", statusSlices(summary),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"30%", "65%"}}),
	)

	page := components.NewPage()
	page.PageTitle = "Planning Run Report"
	page.AddCharts(line, bar, pie)

	return page
}

// statusSlices breaks the run down into ok cycles plus one slice per
// failure kind.
func statusSlices(summary *storage.RunSummary) []opts.PieData {
	slices := []opts.PieData{
		{Name: "ok", Value: summary.Cycles - summary.Failed},
	}
	kinds := make([]string, 0, len(summary.ErrorKinds))
	for kind := range summary.ErrorKinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		count := summary.ErrorKinds[kind]
		name := kind
		if name == "" {
			name = "unknown"
		}
		slices = append(slices, opts.PieData{Name: "failed: " + name, Value: count})
	}
	return slices
}
