package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	jsonmend "github.com/reoring/jsonmend"
	"github.com/reoring/jsonmend/i18n"
	"github.com/reoring/jsonmend/jsonio"
	"github.com/reoring/jsonmend/observe/promobs"
	"github.com/reoring/jsonmend/observe/slogobs"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `jsonmend CLI

Usage:
  jsonmend [global flags] repair [-o out.json] [-pretty] file|-
  jsonmend [global flags] ndjson [-flatten] [-pretty] in.ndjson out.ndjson|-
  jsonmend [global flags] batch [-size N] [-kind ndjson|csv|excel] [-flatten] file
  jsonmend version

Global flags:
  -config file   YAML configuration (${VAR} references are expanded)
  -debug         enable debug logs
  -parser name   strict parser: encoding/json, go-json or encoding/json/v2
  -metrics       print repair metrics to stderr on exit`)
}

type app struct {
	cfg    *Config
	r      *jsonmend.Repairer
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsonmend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	configPath := fs.String("config", "", "path to a YAML config file")
	debug := fs.Bool("debug", false, "enable debug logs")
	parser := fs.String("parser", "", "strict parser: encoding/json, go-json or encoding/json/v2")
	metrics := fs.Bool("metrics", false, "print repair metrics to stderr on exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		usage(stderr)
		return 2
	}
	if rest[0] == "version" {
		fmt.Fprintln(stdout, "jsonmend", version)
		return 0
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		slog.New(tint.NewHandler(stderr, nil)).Error("Failed to load config", "error", err)
		return 1
	}
	if *parser != "" {
		cfg.Repair.Parser = *parser
	}
	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      cfg.level(*debug),
		TimeFormat: time.RFC3339,
	}))
	i18n.SetLanguage(cfg.Log.Lang)

	observers := []jsonmend.Observer{slogobs.New(logger)}
	var reg *prometheus.Registry
	if *metrics {
		reg = prometheus.NewRegistry()
		observers = append(observers, promobs.New(reg))
	}
	r, err := cfg.Repairer(jsonmend.MultiObserver(observers...))
	if err != nil {
		logger.Error("Failed to configure repairer", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{cfg: cfg, r: r, logger: logger, stdin: stdin, stdout: stdout}
	var code int
	switch rest[0] {
	case "repair":
		code = a.repairCmd(ctx, rest[1:])
	case "ndjson":
		code = a.ndjsonCmd(ctx, rest[1:])
	case "batch":
		code = a.batchCmd(ctx, rest[1:])
	default:
		usage(stderr)
		return 2
	}
	if reg != nil {
		if err := dumpMetrics(stderr, reg); err != nil {
			logger.Error("Failed to write metrics", "error", err)
		}
	}
	return code
}

func (a *app) repairCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("repair", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default stdout)")
	pretty := fs.Bool("pretty", false, "indent output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	in := fs.Arg(0)

	var text []byte
	var err error
	if in == "" || in == "-" {
		text, err = io.ReadAll(a.stdin)
	} else {
		text, err = os.ReadFile(in)
	}
	if err != nil {
		a.logger.Error("Failed to read input", "error", err)
		return 1
	}
	v, err := a.r.Loads(ctx, string(text))
	if err != nil {
		a.reportFailure(string(text), err)
		return 1
	}

	opt := jsonio.WriteOptions{Pretty: *pretty}
	if *out != "" {
		if err := jsonio.WriteFile(*out, v, opt); err != nil {
			a.logger.Error("Failed to write output", "error", err)
			return 1
		}
		return 0
	}
	if err := writeJSON(a.stdout, v, *pretty); err != nil {
		a.logger.Error("Failed to write output", "error", err)
		return 1
	}
	return 0
}

func (a *app) ndjsonCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("ndjson", flag.ContinueOnError)
	flat := fs.Bool("flatten", false, "flatten every record")
	pretty := fs.Bool("pretty", false, "indent records")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	in, out := fs.Arg(0), fs.Arg(1)

	recs, readErr := jsonio.ReadNDJSONFile(ctx, in, a.r)
	if readErr != nil {
		// records before the failing line are still written
		a.logger.Error("Stopped reading NDJSON", "error", readErr, "records", len(recs))
	}
	if *flat {
		f := a.cfg.flattener()
		for i := range recs {
			recs[i] = f(recs[i])
		}
	}

	opt := jsonio.WriteOptions{Pretty: *pretty}
	var err error
	if out == "-" {
		err = jsonio.WriteNDJSON(a.stdout, recs, opt)
	} else {
		err = jsonio.WriteNDJSONFile(out, recs, opt)
	}
	if err != nil {
		a.logger.Error("Failed to write output", "error", err)
		return 1
	}
	a.logger.Info("NDJSON written", "records", len(recs), "output", out)
	if readErr != nil {
		return 1
	}
	return 0
}

func (a *app) batchCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	size := fs.Int("size", a.cfg.Batch.Size, "records per batch")
	kindName := fs.String("kind", "", "source kind: ndjson, csv or excel (default from extension)")
	flat := fs.Bool("flatten", false, "flatten every record")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	var kind jsonio.Kind
	var err error
	if *kindName != "" {
		kind, err = jsonio.ParseKind(*kindName)
	} else {
		kind, err = jsonio.KindForPath(path)
	}
	if err != nil {
		a.logger.Error("Cannot read batches", "error", err)
		return 1
	}

	var f func(any) any
	if *flat {
		f = a.cfg.flattener()
	}
	code, n := 0, 0
	for batch, err := range jsonio.Batches(path, kind, *size) {
		if ctx.Err() != nil {
			a.logger.Warn("Interrupted", "batches", n)
			return 1
		}
		if err != nil {
			if errors.Is(err, jsonio.ErrBatchSize) {
				a.logger.Error("Cannot read batches", "error", err)
				return 2
			}
			a.logger.Warn("Skipped input", "error", err)
			code = 1
			continue
		}
		n++
		a.logger.Info("Batch", "index", n, "records", len(batch), "kind", kind.String())
		if f != nil {
			for i := range batch {
				batch[i] = f(batch[i])
			}
		}
		if err := jsonio.WriteNDJSON(a.stdout, batch, jsonio.WriteOptions{}); err != nil {
			a.logger.Error("Failed to write output", "error", err)
			return 1
		}
	}
	return code
}

// reportFailure logs why err could not be repaired.
func (a *app) reportFailure(text string, err error) {
	iss := jsonmend.Diagnose(text, err)
	a.logger.Error("Unable to repair JSON",
		"code", iss.Code,
		"offset", iss.Offset,
		"window", iss.InputFragment,
		"hint", iss.Hint,
		"error", err,
	)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func dumpMetrics(w io.Writer, reg *prometheus.Registry) error {
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
