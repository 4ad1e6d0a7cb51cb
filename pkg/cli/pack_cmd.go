package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"datapack/internal/export"
	"datapack/internal/packer"
	"datapack/internal/validation"
)

func newPackCmd(a *app) *cobra.Command {
	var (
		dataPath       string
		detailsPath    string
		mappingsPath   string
		outPath        string
		sheet          string
		reportPath     string
		skipValidation bool
		static         bool
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build a package document and write a Parquet package",
		Long: `Build a tabular data package from a data file, package details and column
mappings, validate it against the standard and write the table to Parquet
with the package document embedded as file metadata.

Nothing is written when validation fails. Use --report to keep a text
report of the findings.`,
		Example: `  datapack pack --data emissions.csv --details details.yaml --mappings mappings.yaml --out emissions.parquet`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			details, err := loadDetails(detailsPath)
			if err != nil {
				return err
			}
			mappings, err := loadMappings(mappingsPath)
			if err != nil {
				return err
			}
			v, err := a.validator()
			if err != nil {
				return err
			}
			p, err := a.openPacker(ctx)
			if err != nil {
				return err
			}
			defer p.Close() //nolint:errcheck

			tbl, err := p.ReadFile(ctx, dataPath, packer.ReadOptions{Dynamic: !static})
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = strings.TrimSuffix(dataPath, filepath.Ext(dataPath)) + ".parquet"
				if outPath == dataPath {
					return fmt.Errorf("--out is required when --data is a Parquet file")
				}
			}
			if sheet == "" {
				sheet = baseName(dataPath)
			}

			req := export.Request{
				Table:     tbl,
				Mappings:  mappings,
				Details:   details,
				FileName:  filepath.Base(dataPath),
				SheetName: sheet,
			}
			outcome, err := export.New(v, p, a.logger).Export(ctx, req, outPath, !skipValidation)

			var failed *export.ValidationFailedError
			if errors.As(err, &failed) {
				if reportPath != "" {
					if werr := writeReport(reportPath, req, failed.Result); werr != nil {
						return werr
					}
				}
				if getOutputFormat(cmd) == "json" {
					_ = PrintJSON(cmd.OutOrStdout(), failed.Result.Report())
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), failed.Error())
				}
				return errInvalid
			}
			if err != nil {
				return err
			}
			if reportPath != "" && outcome.Result != nil {
				if err := writeReport(reportPath, req, outcome.Result); err != nil {
					return err
				}
			}

			if getOutputFormat(cmd) == "json" {
				body := map[string]any{
					"id":       outcome.ID,
					"path":     outcome.Path,
					"level":    outcome.Level(),
					"metadata": outcome.Document,
				}
				if outcome.Result != nil {
					body["report"] = outcome.Result.Report()
				}
				return PrintJSON(cmd.OutOrStdout(), body)
			}
			level := string(outcome.Level())
			if level == "" {
				level = "not validated"
			}
			PrintDetail(cmd.OutOrStdout(), map[string]any{
				"id":    outcome.ID,
				"path":  outcome.Path,
				"level": level,
				"rows":  tbl.NumRows(),
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Data file (CSV or Parquet)")
	cmd.Flags().StringVar(&detailsPath, "details", "", "Package details (YAML or JSON)")
	cmd.Flags().StringVar(&mappingsPath, "mappings", "", "Column mappings (YAML or JSON)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output Parquet file (default: next to the data file)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name used for the resource name (default data file name)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a validation report to this file")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Write the package without validating it")
	cmd.Flags().BoolVar(&static, "static", false, "Read CSV columns with one type per column")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("details")
	return cmd
}

func writeReport(path string, req export.Request, r *validation.Result) error {
	if err := os.WriteFile(path, []byte(export.Report(req, r, time.Now())), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
