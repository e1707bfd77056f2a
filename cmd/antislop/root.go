package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/skew202/antislop/internal/version"
	"github.com/skew202/antislop/pkg/config"
	"github.com/skew202/antislop/pkg/grammar"
	"github.com/skew202/antislop/pkg/profile"
	"github.com/skew202/antislop/pkg/report"
	"github.com/skew202/antislop/pkg/scan"
)

// errFindings distinguishes "scan worked, slop found" from real errors;
// main maps it to exit code 1 and prints nothing for it.
var errFindings = errors.New("findings present")

type rootFlags struct {
	configPath    string
	profileSource string
	disable       []string
	only          []string
	extensions    []string
	maxSizeKB     int64
	format        string
	listLanguages bool
	listProfiles  bool
	printConfig   bool
	noNaming      bool
	fileTimeout   time.Duration
	verbose       int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "antislop [path...]",
		Short:         "Detect AI slop: placeholders, hedging, stubs, and deferrals",
		Version:       version.Short(),
		SilenceUsage: true,
		// Errors surface through main's exit-code mapping; cobra must
		// not print "Error: findings present" on every dirty scan.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "load project configuration from this file (skip auto-discovery)")
	cmd.Flags().StringVar(&flags.profileSource, "profile", "", "compose a profile (name, path, or URL)")
	cmd.Flags().StringSliceVar(&flags.disable, "disable", nil, "disable pattern categories (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.only, "only", nil, "enable only these categories (comma-separated)")
	cmd.Flags().StringSliceVarP(&flags.extensions, "extensions", "e", nil, "override the extension allowlist (comma-separated)")
	cmd.Flags().Int64Var(&flags.maxSizeKB, "max-size", 0, "maximum file size to scan (KB)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "output format: text, json, or sarif")
	cmd.Flags().BoolVar(&flags.listLanguages, "list-languages", false, "list supported languages and exit")
	cmd.Flags().BoolVar(&flags.listProfiles, "list-profiles", false, "list available profiles and exit")
	cmd.Flags().BoolVar(&flags.printConfig, "print-config", false, "print the effective configuration and exit")
	cmd.Flags().BoolVar(&flags.noNaming, "no-filename-check", false, "disable filename convention checks")
	cmd.Flags().DurationVar(&flags.fileTimeout, "file-timeout", 0, "per-file detection budget")
	cmd.Flags().CountVarP(&flags.verbose, "verbose", "v", "increase log verbosity (-v, -vv)")

	return cmd
}

func newLogger(verbose int) hclog.Logger {
	level := hclog.Warn
	switch {
	case verbose >= 2:
		level = hclog.Debug
	case verbose == 1:
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "antislop",
		Level:  level,
		Output: os.Stderr,
	})
}

func runScan(cmd *cobra.Command, flags *rootFlags, args []string) error {
	log := newLogger(flags.verbose)
	grammars := grammar.NewRegistry()

	// Introspection calls execute and exit before any scan setup.
	if flags.listLanguages {
		return report.RenderLanguages(cmd.OutOrStdout(), grammars)
	}
	if flags.listProfiles {
		return report.RenderProfiles(cmd.OutOrStdout(), profile.NewLoader().List())
	}

	cfg, err := buildConfig(flags, log)
	if err != nil {
		return err
	}

	if flags.printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	rules, err := cfg.CompileRegistry()
	if err != nil {
		return err
	}
	log.Debug("compiled ruleset", "patterns", rules.Len())

	scanner := scan.New(cfg, rules, grammars, scan.Options{
		FileTimeout: flags.fileTimeout,
		NoNaming:    flags.noNaming,
		Logger:      log,
	})

	// SIGINT stops accepting new work, drains, and reports what
	// completed; exit code is 2 either way.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := scanner.Run(ctx, args)
	if err != nil && !errors.Is(err, scan.ErrCancelled) {
		return err
	}

	if renderErr := report.Render(cmd.OutOrStdout(), format, result); renderErr != nil {
		return renderErr
	}

	if errors.Is(err, scan.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "scan cancelled; results are partial")
		return scan.ErrCancelled
	}
	if result.TotalFindings > 0 {
		return errFindings
	}
	return nil
}

// buildConfig layers configuration: defaults, composed profile, project
// file, CLI overrides.
func buildConfig(flags *rootFlags, log hclog.Logger) (*config.Config, error) {
	cfg := config.Default()

	if flags.profileSource != "" {
		p, err := profile.NewLoader().Resolve(profile.ParseSource(flags.profileSource))
		if err != nil {
			return nil, err
		}
		log.Info("loaded profile", "name", p.Metadata.Name, "version", p.Metadata.Version, "patterns", len(p.Patterns))
		cfg.ApplyProfile(p)
	}

	switch {
	case flags.configPath != "":
		if err := cfg.LoadFile(flags.configPath, log); err != nil {
			return nil, err
		}
	default:
		if path, ok := config.Discover("."); ok {
			log.Debug("discovered project configuration", "path", path)
			if err := cfg.LoadFile(path, log); err != nil {
				return nil, err
			}
		}
	}

	if len(flags.extensions) > 0 {
		cfg.FileExtensions = flags.extensions
	}
	if flags.maxSizeKB > 0 {
		cfg.MaxFileSizeKB = flags.maxSizeKB
	}

	var err error
	if cfg.Only, err = config.ParseCategories(flags.only); err != nil {
		return nil, err
	}
	if cfg.Disable, err = config.ParseCategories(flags.disable); err != nil {
		return nil, err
	}
	return cfg, nil
}
