package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/cli"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/utils"
)

// errReported marks a failure already shown to the user
var errReported = errors.Errorf("failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			a.reporter.ReportError(err)
		}
		return 1
	}
	return 0
}

type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	configFile string
	dryRun     bool
	verbose    bool
	quiet      bool
	noStrict   bool

	settings    *cli.Settings
	logger      *zap.Logger
	diagnostics *utils.DiagnosticSystem
	reporter    *cli.DiagnosticReporter
}

func newApp(stdout, stderr io.Writer) *app {
	reporter := cli.NewDiagnosticReporter(false)
	reporter.SetOutput(stderr)
	return &app{
		v:        cli.NewViper(),
		stdout:   stdout,
		stderr:   stderr,
		reporter: reporter,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reversal",
		Short: "Generate Java and JavaScript friendly companions of Kotlin suspend APIs",
		Long: `Reversal reads Kotlin sources and declaration snapshots, finds interfaces and
abstract classes marked with @SuspendReversal and generates companion types
that implement every suspend function through a blocking, CompletableFuture
or Promise based counterpart.

Inputs are files, directories or Go-style patterns:
  ./...              every file below the current directory
  ./src/commonMain   the files below one directory
  api.decl.yaml      a single declaration snapshot

Settings are read from reversal.yaml, found from the working directory
upwards, then from REVERSAL_* environment variables, then from flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (default: nearest reversal.yaml)")
	flags.String("out", "", "output root of JVM companions")
	flags.String("out-js", "", "output root of JS companions")
	flags.Bool("strict", true, "fail a type when one of its functions cannot be generated")
	flags.BoolVar(&a.noStrict, "no-strict", false, "skip functions that cannot be generated")
	flags.Int("workers", 0, "number of types processed in parallel (default: number of CPUs)")
	flags.Bool("log-json", false, "write structured logs as JSON")
	flags.BoolVar(&a.dryRun, "dry-run", false, "report what would change without touching the file system")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output and detailed error reports")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only show errors")

	for key, flag := range map[string]string{
		"output.jvm": "out",
		"output.js":  "out-js",
		"strict":     "strict",
		"workers":    "workers",
		"log.json":   "log-json",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(a.generateCmd(), a.checkCmd(), a.cleanCmd())
	return root
}

// setup loads the settings and builds the logger and the console output
func (a *app) setup(_ *cobra.Command, _ []string) error {
	if a.noStrict {
		a.v.Set("strict", false)
	}
	settings, err := cli.LoadSettings(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.settings = settings

	a.logger, err = newLogger(settings.Log.JSON, a.verbose)
	if err != nil {
		return errors.Annotate(err, "failed to create logger")
	}

	switch {
	case a.quiet:
		a.diagnostics = utils.NewQuietDiagnostics()
	case a.verbose:
		a.diagnostics = utils.NewVerboseDiagnostics()
	default:
		a.diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if a.stdout != os.Stdout {
		a.diagnostics.SetOutput(a.stdout, a.stderr)
	}
	if settings.ConfigFile != "" {
		a.diagnostics.Info("using %s", settings.ConfigFile)
	}
	a.reporter = cli.NewDiagnosticReporter(a.verbose)
	a.reporter.SetOutput(a.stderr)

	a.logger.Debug("settings loaded",
		zap.String("config", settings.ConfigFile),
		zap.String("jvm", settings.Output.JVM),
		zap.String("js", settings.Output.JS),
		zap.Bool("strict", settings.Strict),
		zap.Int("workers", settings.Workers))
	return nil
}

// newLogger writes warnings and errors to stderr, debug output too when
// verbose
func newLogger(json, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if json {
		cfg = zap.NewProductionConfig()
	}
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func (a *app) processor() *cli.Processor {
	return cli.NewProcessor(a.settings,
		cli.WithProcessorLogger(a.logger),
		cli.WithDiagnostics(a.diagnostics))
}

func inputs(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}
