package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/cli"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/emitter"
)

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [inputs...]",
		Short: "Generate companion types",
		Example: `  reversal generate
  reversal generate ./src/commonMain/...
  reversal generate --no-strict --out build/jvm --out-js build/js ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := inputs(args)
			a.diagnostics.Header("generating companions")
			a.diagnostics.SourcePaths(in)

			report, outputs, err := a.processor().Generate(cmd.Context(), in, a.dryRun)
			if err != nil {
				return err
			}
			changed := 0
			for _, out := range outputs {
				if out.Status != emitter.Unchanged {
					changed++
				}
			}
			if !a.quiet {
				a.reporter.SetOutput(a.stdout)
				a.reporter.ReportSummary(report.Summary)
				a.reporter.SetOutput(a.stderr)
				a.diagnostics.GenerationComplete(changed)
			}
			return a.failures(report)
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [inputs...]",
		Short: "Verify that generated files are up to date",
		Long: `Check renders every companion in memory and compares it with the output
roots. It exits non-zero when a file is missing, differs or is no longer
produced by any input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			drifts, report, err := cli.NewChecker(a.processor()).Check(cmd.Context(), inputs(args))
			if err != nil {
				return err
			}
			for _, d := range drifts {
				fmt.Fprintf(a.stdout, "%-8s %s\n", d.Kind, d.Path)
			}
			if err := a.failures(report); err != nil {
				return err
			}
			if len(drifts) > 0 {
				a.reporter.ReportWarning(fmt.Sprintf("%d generated file(s) out of date, run 'reversal generate'", len(drifts)))
				return errReported
			}
			a.diagnostics.Success("generated files are up to date")
			return nil
		},
	}
}

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated files from the output roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderer, err := a.processor().Renderer()
			if err != nil {
				return err
			}
			cleaner := cli.NewCleaner(renderer, a.logger, a.dryRun)
			removed, err := cleaner.Clean([]string{a.settings.Output.JVM, a.settings.Output.JS})
			if err != nil {
				return err
			}
			for _, path := range removed {
				a.diagnostics.PhaseWrite("removed %s", path)
			}
			a.diagnostics.Summary("Clean", map[string]interface{}{
				"removed": len(removed),
				"dry run": a.dryRun,
			})
			return nil
		},
	}
}

// failures reports the per-type errors of a pass
func (a *app) failures(report *cli.Report) error {
	if err := report.Err(); err != nil {
		a.reporter.ReportError(err)
		return errReported
	}
	return nil
}
