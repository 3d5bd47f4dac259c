package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/1744154709/BatchComparisonJar/src/internal/runner"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &runner.Options{}
	var logLevel string

	cmd := &cobra.Command{
		Use:   "jardiff",
		Short: "Compare two sets of JAR archives and report logical code changes",
		Long: `jardiff compares two directories of JAR archives class by class.
Changed classes are decompiled and classified as logical changes or as
compiler noise, and the results are written as HTML reports, a Markdown
summary and optionally a JSON export. In github mode the summary is posted
to the pull request and a release gate of OPA policies can block the run.`,
		Version:      fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.Flags().Changed("strip-versions"))
		},
	}

	// Run mode
	cmd.Flags().StringVar(&opts.RunMode, "run-mode", runner.RUN_MODE_LOCAL, "Run mode: github or local")

	// Common flags
	cmd.Flags().StringVar(&opts.OldPath, "old", "", "Directory with the old JAR archives (required)")
	cmd.Flags().StringVar(&opts.NewPath, "new", "", "Directory with the new JAR archives (required)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/jardiff/config.yaml)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Output directory (default: parent of --new)")
	cmd.Flags().StringVar(&opts.TemplatesPath, "templates-path", "", "Directory with custom report.html.tmpl, summary.md.tmpl or policy.md.tmpl")
	cmd.Flags().StringVar(&opts.DecompilerCmd, "decompiler-cmd", "", "Decompiler command, {input} and {outdir} are substituted (e.g. \"java -jar cfr.jar {input} --outputdir {outdir}\")")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent archive comparisons (default from config)")
	cmd.Flags().BoolVar(&opts.StripVersions, "strip-versions", false, "Pair archives by name without trailing version, e.g. lib-1.0.jar with lib-1.1.jar")
	cmd.Flags().BoolVar(&opts.EnableExportReport, "enable-export-report", false, "Write report.json to the output directory")
	cmd.Flags().BoolVar(&opts.EnableTracing, "enable-tracing", false, "Write performance-report.json to the output directory")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// GitHub mode flags
	cmd.Flags().StringVar(&opts.GhRepo, "gh-repo", "", "GitHub repository (e.g., org/repo) [github mode]")
	cmd.Flags().IntVar(&opts.GhPrNumber, "gh-pr-number", 0, "GitHub PR number [github mode]")

	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}
