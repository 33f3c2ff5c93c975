// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cilkscale measures how a Cilk program scales with the number of
// cores.
//
// Usage:
//
//	cilkscale -cilkscale bin -cilkscale-benchmark bin [flags] [arg...]
//
// The binary given by -cilkscale must be compiled with
// -fcilktool=cilkscale. Cilkscale runs it once to collect the work,
// span and parallelism of each instrumented region, writing them to
// the CSV file given by -output-csv.
//
// The binary given by -cilkscale-benchmark must be the same program
// compiled with -fcilktool=cilkscale-benchmark. Cilkscale runs it on
// 1, 2, ... P physical cores, where P is the number of cores of the
// machine (or on the counts given by -cpu-counts), pinning each run to
// the first cores of each socket in turn. Each run adds one column of
// measured times to the CSV file.
//
// Finally, cilkscale plots the measured runtime and speedup of each
// row against the perfect-linear, burdened-dag and span bounds, to the
// file given by -output-plot. The format (PDF, PNG or SVG) is chosen
// by the file extension.
//
// Interrupting cilkscale stops the sweep after the current run. The
// runs completed so far are still written and plotted; the run that was
// interrupted is discarded.
//
// The positional arguments, and the whitespace-separated words of
// -args, are passed to both binaries.
//
// Optionally, cilkscale also writes the dataset as Parquet (-parquet),
// writes the sweep as Prometheus metrics for node_exporter's textfile
// collector (-metrics), stores the dataset in a SQL archive (-dsn), and
// uploads the output files to Cloud Storage (-upload gs://bucket/dir).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"github.com/cilkscale/scalebench/archive"
	_ "github.com/cilkscale/scalebench/archive/sqlite3"
	"github.com/cilkscale/scalebench/chart"
	"github.com/cilkscale/scalebench/dataset"
	"github.com/cilkscale/scalebench/export"
	"github.com/cilkscale/scalebench/internal/upload"
	"github.com/cilkscale/scalebench/metrics"
	"github.com/cilkscale/scalebench/runner"
	"github.com/cilkscale/scalebench/topology"
)

var exit = os.Exit // replaced during testing

// resolveTopology is replaced during testing.
var resolveTopology = topology.Resolve

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), `Usage: cilkscale -cilkscale bin -cilkscale-benchmark bin [flags] [arg...]

`)
		fs.PrintDefaults()
	}
}

func main() {
	log.SetPrefix("cilkscale: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := cilkscale(ctx, stop, os.Stdout, os.Stderr, os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		exit(2)
	}
	if err != nil {
		log.Print(err)
		exit(1)
	}
}

type config struct {
	instrumented, benchmark string
	cpuCounts               string
	outCSV, outPlot         string
	rows                    string
	args                    string
	repeat                  int
	settle                  time.Duration
	parquet, metrics        string
	dbDriver, dsn, label    string
	upload                  string
	verbose                 bool
}

func parseFlags(stderr io.Writer, args []string) (*config, []string, error) {
	fs := flag.NewFlagSet("cilkscale", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	c := new(config)
	fs.StringVar(&c.instrumented, "cilkscale", "", "`binary` compiled with -fcilktool=cilkscale")
	fs.StringVar(&c.benchmark, "cilkscale-benchmark", "", "`binary` compiled with -fcilktool=cilkscale-benchmark")
	fs.StringVar(&c.cpuCounts, "cpu-counts", "", "comma-separated `list` of cpu counts to benchmark (default all)")
	fs.StringVar(&c.outCSV, "output-csv", "out.csv", "write the dataset to `file`")
	fs.StringVar(&c.outPlot, "output-plot", "plot.pdf", "write the plot to `file` (.pdf, .png or .svg; empty for none)")
	fs.StringVar(&c.rows, "rows-to-plot", "all", "comma-separated `list` of rows to plot, or all")
	fs.StringVar(&c.args, "args", "", "whitespace-separated binary `arguments`")
	fs.IntVar(&c.repeat, "repeat", 1, "run each worker count `n` times and keep the median")
	fs.DurationVar(&c.settle, "settle", runner.DefaultSettle, "wait `duration` before each run")
	fs.StringVar(&c.parquet, "parquet", "", "also write the dataset as Parquet to `file`")
	fs.StringVar(&c.metrics, "metrics", "", "write Prometheus metrics to `file`")
	fs.StringVar(&c.dbDriver, "db-driver", "sqlite3", "archive database `driver` (sqlite3 or mysql)")
	fs.StringVar(&c.dsn, "dsn", "", "archive the dataset in the database at `dsn`")
	fs.StringVar(&c.label, "label", "", "archive `label` (default host name)")
	fs.StringVar(&c.upload, "upload", "", "upload output files to `gs://bucket/prefix`")
	fs.BoolVar(&c.verbose, "v", false, "echo benchmark output")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if c.instrumented == "" || c.benchmark == "" {
		fs.Usage()
		return nil, nil, errors.New("-cilkscale and -cilkscale-benchmark are required")
	}
	if c.repeat < 1 {
		return nil, nil, fmt.Errorf("-repeat %d: must be at least 1", c.repeat)
	}
	binArgs := append(strings.Fields(c.args), fs.Args()...)
	return c, binArgs, nil
}

// cilkscale runs the whole pipeline. stop, if non-nil, is called once
// the sweep is over, so that a second interrupt kills the process.
func cilkscale(ctx context.Context, stop func(), stdout, stderr io.Writer, args []string) error {
	c, binArgs, err := parseFlags(stderr, args)
	if err != nil {
		return err
	}
	logger := log.New(stderr, "cilkscale: ", 0)

	var target upload.Target
	if c.upload != "" {
		if target, err = upload.ParseURL(c.upload); err != nil {
			return err
		}
	}
	if c.outPlot != "" {
		if _, err := chart.Format(c.outPlot); err != nil {
			return err
		}
	}
	var counts []int
	if c.cpuCounts != "" {
		if counts, err = runner.ParseCounts(c.cpuCounts); err != nil {
			return err
		}
	}

	ordering, err := resolveTopology(ctx)
	if err != nil {
		return err
	}
	if err := runner.CheckCounts(counts, len(ordering)); err != nil {
		return err
	}

	// Collect the work/span profile.
	inst := runner.Command{Path: c.instrumented, Args: binArgs}
	out, errOut, err := runner.Profile(inst, c.outCSV)
	echo(stdout, "STDOUT", inst, out)
	echo(stderr, "STDERR", inst, errOut)
	if err != nil {
		return err
	}
	base, err := dataset.ReadFile(c.outCSV)
	if err != nil {
		return err
	}

	var rec *metrics.Recorder
	if c.metrics != "" {
		rec = metrics.New()
		if err := rec.Profile(base); err != nil {
			return err
		}
	}

	// Sweep the benchmark.
	ex := &runner.Executor{
		Ordering: ordering,
		Settle:   c.settle,
		Repeat:   c.repeat,
		Logf:     logger.Printf,
	}
	if c.verbose {
		ex.Stdout, ex.Stderr = stdout, stderr
	}
	sw := &runner.Sweeper{Executor: ex, Logf: logger.Printf}
	if rec != nil {
		sw.OnRun = rec.Run
	}
	res, sweepErr := sw.Sweep(ctx, base, counts, runner.Command{Path: c.benchmark, Args: binArgs})
	if stop != nil {
		stop()
	}
	ctx = context.WithoutCancel(ctx)
	if res == nil {
		return sweepErr
	}
	// Keep whatever was measured, even if the sweep failed.
	if err := res.Dataset.WriteFile(c.outCSV); err != nil {
		return err
	}
	if sweepErr != nil {
		return sweepErr
	}
	if n := len(res.Failed); n > 0 {
		logger.Printf("%d of %d benchmark runs failed", n, len(res.Requested))
	}
	d := res.Dataset

	files := []string{c.outCSV}
	if c.outPlot != "" && len(d.Rows) == 0 {
		logger.Printf("no rows to plot")
	} else if c.outPlot != "" {
		rows, err := chart.SelectRows(c.rows, len(d.Rows))
		if err != nil {
			return err
		}
		logger.Printf("generating plot (%d subplots)", len(rows))
		opts := &chart.Options{Rows: rows, Ordering: ordering, Warn: warner(logger)}
		if err := chart.WriteFile(c.outPlot, d, opts); err != nil {
			return err
		}
		files = append(files, c.outPlot)
	}
	if c.parquet != "" {
		if err := export.WriteParquet(c.parquet, d); err != nil {
			return err
		}
		files = append(files, c.parquet)
	}
	if rec != nil {
		for range res.Failed {
			rec.Failed()
		}
		rec.Interrupted(res.Interrupted != nil)
		if err := rec.WriteTextfile(c.metrics); err != nil {
			return err
		}
	}
	if c.dsn != "" {
		if err := store(ctx, c, d, logger); err != nil {
			return err
		}
	}
	if c.upload != "" {
		u, err := upload.New(ctx, target)
		if err != nil {
			return err
		}
		defer u.Close()
		u.Logf = logger.Printf
		if _, err := u.Upload(ctx, files...); err != nil {
			return err
		}
	}
	return nil
}

// echo prints the captured output of cmd between markers.
func echo(w io.Writer, stream string, cmd runner.Command, out []byte) {
	fmt.Fprintf(w, "\n>> %s (%s)\n", stream, cmd)
	w.Write(out)
	fmt.Fprintf(w, "<< END %s\n\n", stream)
}

func warner(logger *log.Logger) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		logger.Printf("warning: "+format, args...)
	}
}

func store(ctx context.Context, c *config, d *dataset.Dataset, logger *log.Logger) error {
	db, err := archive.OpenSQL(c.dbDriver, c.dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	label := c.label
	if label == "" {
		label, _ = os.Hostname()
	}
	s, err := db.Store(ctx, label, time.Now(), d)
	if err != nil {
		return err
	}
	logger.Printf("archived sweep %d (%s)", s.ID, s.Label)
	return nil
}
