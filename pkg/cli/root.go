// Package cli implements the datapack command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"datapack/internal/config"
	"datapack/internal/packer"
	"datapack/internal/standard"
	"datapack/internal/validation"
)

var (
	version = "dev"
	commit  = "none"
)

// errInvalid signals that a validation failed. Its findings have already
// been printed, so Execute only turns it into the exit status.
var errInvalid = errors.New("validation failed")

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errInvalid) {
			return 1
		}
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = PrintJSON(os.Stdout, map[string]any{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// app is the state shared by every command once flags and environment have
// been resolved.
type app struct {
	output          string
	standardVersion string
	standardsDir    string
	logLevel        string
	sampleSize      int

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "datapack",
		Short:         "Validate and package tabular data with ontology metadata",
		Long:          "Validate data package metadata and tables against a versioned standard and write metadata-annotated Parquet files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd)
		},
	}

	a.bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newValidatePackedCmd(a))
	rootCmd.AddCommand(newPackCmd(a))
	rootCmd.AddCommand(newInspectCmd(a))
	rootCmd.AddCommand(newStandardsCmd(a))

	return rootCmd
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&a.output, "output", "o", "table", "Output format (table, json)")
	flags.StringVar(&a.standardVersion, "standard-version", "", "Standard version to validate against (env STANDARD_VERSION)")
	flags.StringVar(&a.standardsDir, "standards-dir", "", "Directory of v*.yaml standard documents (env STANDARDS_DIR)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.IntVar(&a.sampleSize, "sample-size", 0, "Values sampled per column for type matching (env TYPE_SAMPLE_SIZE)")
}

// resolve applies precedence flag > env > default and builds the logger.
func (a *app) resolve(cmd *cobra.Command) error {
	if err := validateOutputFormat(a.output); err != nil {
		return err
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("standard-version") {
		cfg.StandardVersion = a.standardVersion
	}
	if flags.Changed("standards-dir") {
		cfg.StandardsDir = a.standardsDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("sample-size") {
		cfg.TypeSampleSize = a.sampleSize
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		a.logger.Debug("config", "warning", w)
	}
	return nil
}

func (a *app) loader() *standard.Loader {
	return a.cfg.StandardLoader()
}

// validator returns a validator for the configured standard version.
func (a *app) validator() (*validation.Validator, error) {
	opts := []validation.Option{validation.WithLogger(a.logger)}
	if a.cfg.TypeSampleSize > 0 {
		opts = append(opts, validation.WithSampleSize(a.cfg.TypeSampleSize))
	}
	return validation.NewForVersion(a.loader(), a.cfg.StandardVersion, opts...)
}

func (a *app) openPacker(ctx context.Context) (*packer.Packer, error) {
	return packer.Open(ctx, a.logger)
}
