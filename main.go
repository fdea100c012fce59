package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansel1/tangview/config"
	"github.com/ansel1/tangview/engine"
	"github.com/ansel1/tangview/metrics"
	"github.com/ansel1/tangview/output"
	"github.com/ansel1/tangview/output/format"
	"github.com/ansel1/tangview/results"
	"github.com/ansel1/tangview/server"
	"github.com/ansel1/tangview/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var Version = "dev"

// errNoSource is returned when neither an argument nor the config names a report.
var errNoSource = errors.New("no report source: pass a URL or path, or set source in " + config.FileName)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr, isatty.IsTerminal(os.Stdout.Fd()))
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, tty bool) int {
	a := &app{stdout: stdout, stderr: stderr, tty: tty}

	err := a.cli().RunContext(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintf(stderr, "Error: %s\n", msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

// errFailures makes the process exit 1 without printing anything more.
var errFailures = cli.Exit("", 1)

type app struct {
	stdout io.Writer
	stderr io.Writer
	tty    bool
}

func (a *app) cli() *cli.App {
	return &cli.App{
		Name:      "tangview",
		Usage:     "View Jest HTML reporter results in the terminal",
		Version:   Version,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags:     globalFlags,
		// Exit codes are mapped by run.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:      "view",
				Usage:     "Browse a report in an interactive viewer",
				ArgsUsage: "[url|path]",
				Flags:     []cli.Flag{NoTTYFlag},
				Action:    a.view,
			},
			{
				Name:      "summary",
				Usage:     "Print a report summary and exit 1 if anything failed",
				ArgsUsage: "[url|path]",
				Action:    a.summary,
			},
			{
				Name:      "serve",
				Usage:     "Serve a report as a result script and JSON",
				ArgsUsage: "[url|path]",
				Flags:     []cli.Flag{ListenFlag, RefreshFlag},
				Action:    a.serve,
			},
		},
		DefaultCommand: "view",
	}
}

// session is the state every command starts from.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *results.Collector
	fetcher   *engine.Fetcher
}

func (a *app) setup(c *cli.Context, logOut io.Writer, fetcherOpts ...engine.Option) (*session, error) {
	cfg, err := config.Load(c.String(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}

	err = cfg.Apply(config.Flags{
		Source:             c.Args().First(),
		GroupLevel:         c.Int(GroupLevelFlag.Name),
		GroupLevelSet:      c.IsSet(GroupLevelFlag.Name),
		Precision:          c.Int(PrecisionFlag.Name),
		PrecisionSet:       c.IsSet(PrecisionFlag.Name),
		NoColor:            c.Bool(NoColorFlag.Name),
		NoColorSet:         c.IsSet(NoColorFlag.Name),
		Listen:             c.String(ListenFlag.Name),
		ListenSet:          c.IsSet(ListenFlag.Name),
		Callback:           c.String(CallbackFlag.Name),
		CallbackSet:        c.IsSet(CallbackFlag.Name),
		SlowThresholdMs:    c.Int(SlowThresholdFlag.Name),
		SlowThresholdMsSet: c.IsSet(SlowThresholdFlag.Name),
	})
	if err != nil {
		return nil, err
	}
	if cfg.Source == "" {
		return nil, errNoSource
	}

	level := slog.LevelInfo
	if c.Bool(DebugFlag.Name) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	collector := results.NewCollector()
	collector.SetRecomputeTiming(c.Bool(RecomputeTimingFlag.Name))

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithDispatcher(engine.NewAutoDispatcher(&http.Client{Timeout: 30 * time.Second}, cfg.Callback)),
	}
	opts = append(opts, fetcherOpts...)

	logger.Debug("config", "source", cfg.Source, "group_level", cfg.GroupLevel, "precision", cfg.Precision)
	return &session{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		fetcher:   engine.NewFetcher(opts...),
	}, nil
}

func (a *app) useColors(cfg *config.Config) bool {
	return a.tty && !cfg.NoColor
}

func (a *app) view(c *cli.Context) error {
	if c.Bool(NoTTYFlag.Name) || !a.tty {
		return a.summary(c)
	}

	// The TUI owns the terminal, so logs only go to a file in debug mode.
	logOut := io.Discard
	if c.Bool(DebugFlag.Name) {
		f, err := tea.LogToFile("tangview-debug.log", "tangview")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	s, err := a.setup(c, logOut)
	if err != nil {
		return err
	}
	defer s.collector.Close()

	m := tui.NewModel(s.collector,
		tui.WithSource(s.cfg.Source),
		tui.WithReload(tui.LoadCmd(c.Context, s.fetcher, s.collector, s.cfg.Source)),
		tui.WithGroupLevel(s.cfg.GroupLevel),
		tui.WithPrecision(s.cfg.Precision),
		tui.WithSlowThreshold(s.cfg.SlowThreshold()),
		tui.WithColors(a.useColors(s.cfg)),
	)

	p := tea.NewProgram(m, tea.WithContext(c.Context), tea.WithOutput(a.stdout))
	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run viewer: %w", err)
	}

	model, ok := finalModel.(*tui.Model)
	if !ok {
		return nil
	}
	model.DisplaySummary(a.stdout)
	if model.HasFailures() {
		return errFailures
	}
	return nil
}

func (a *app) summary(c *cli.Context) error {
	s, err := a.setup(c, a.stderr)
	if err != nil {
		return err
	}

	formatter := format.NewSummaryFormatterWithColors(80, a.useColors(s.cfg))
	formatter.SetPrecision(s.cfg.Precision)
	simple := output.NewSimpleOutput(a.stdout, s.collector, formatter, s.cfg.SlowThreshold())

	events := s.collector.Subscribe()
	go func() {
		defer s.collector.Close()
		_ = s.fetcher.LoadInto(c.Context, s.collector, s.cfg.Source)
	}()

	if err := simple.ProcessEvents(events); err != nil {
		return err
	}
	if simple.HasFailures() {
		return errFailures
	}
	return nil
}

func (a *app) serve(c *cli.Context) error {
	m := metrics.New()
	s, err := a.setup(c, a.stderr, engine.WithMetrics(m))
	if err != nil {
		return err
	}
	defer s.collector.Close()

	load := func() {
		if err := s.fetcher.LoadInto(c.Context, s.collector, s.cfg.Source); err != nil {
			s.logger.Error("load report", "source", s.cfg.Source, "error", err)
			return
		}
		s.collector.WithCurrent(func(r *results.Report) {
			summary := format.ComputeSummary(r, s.cfg.SlowThreshold())
			m.RecordReport(summary.PassedTests, summary.FailedTests, summary.PendingTests, summary.TodoTests)
			s.logger.Info("report loaded", "source", s.cfg.Source, "tests", summary.TotalTests, "failed", summary.FailedTests)
		})
	}
	load()

	if refresh := c.Duration(RefreshFlag.Name); refresh > 0 {
		go func() {
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for {
				select {
				case <-c.Context.Done():
					return
				case <-ticker.C:
					load()
				}
			}
		}()
	}

	srv := server.New(s.collector,
		server.WithCallback(s.cfg.Callback),
		server.WithGroupLevel(s.cfg.GroupLevel),
		server.WithMetrics(m),
		server.WithLogger(s.logger),
	)
	return srv.ListenAndServe(c.Context, s.cfg.Listen)
}
