package cli

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"datapack/internal/packer"
	"datapack/internal/table"
	"datapack/internal/validation"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		metadataPath     string
		dataPath         string
		mappingsPath     string
		inconsistencyOut string
		static           bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a package document and optionally its data",
		Long: `Validate a package document against the configured standard version.

When --data is given the table is checked for missing values, duplicates,
type consistency and schema matching against the first resource. CSV cells
are typed one by one unless --static is set, so mixed columns are reported.`,
		Example: `  datapack validate --metadata datapackage.json
  datapack validate --metadata datapackage.json --data emissions.csv --mappings mappings.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			doc, err := loadDocument(metadataPath)
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

			var tbl *table.Table
			if dataPath != "" {
				p, err := a.openPacker(ctx)
				if err != nil {
					return err
				}
				defer p.Close() //nolint:errcheck
				tbl, err = p.ReadFile(ctx, dataPath, packer.ReadOptions{Dynamic: !static})
				if err != nil {
					return err
				}
			}

			r := v.ValidateAll(doc, tbl, mappings)
			if inconsistencyOut != "" && len(r.Inconsistencies) > 0 {
				if err := writeInconsistencies(inconsistencyOut, r); err != nil {
					return err
				}
			}
			if err := printResult(cmd, r); err != nil {
				return err
			}
			if !r.IsValid() {
				return errInvalid
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metadataPath, "metadata", "", "Package document (JSON)")
	cmd.Flags().StringVar(&dataPath, "data", "", "Data file (CSV or Parquet)")
	cmd.Flags().StringVar(&mappingsPath, "mappings", "", "Column mappings (YAML or JSON)")
	cmd.Flags().StringVar(&inconsistencyOut, "inconsistencies", "", "Write inconsistent cells to this CSV file")
	cmd.Flags().BoolVar(&static, "static", false, "Read CSV columns with one type per column")
	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}

func printResult(cmd *cobra.Command, r *validation.Result) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(cmd.OutOrStdout(), r.Report())
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validation level: %s\n\n", r.Level)
	fmt.Fprint(out, r.String())
	return nil
}

// packedResult is the outcome of validating one packed file.
type packedResult struct {
	File   string             `json:"file"`
	Error  string             `json:"error,omitempty"`
	Report *validation.Report `json:"report,omitempty"`
}

func newValidatePackedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-packed <file.parquet>...",
		Short: "Validate Parquet packages against their embedded metadata",
		Long: `Validate one or more Parquet files written by "datapack pack". Each file's
embedded package document is checked together with its rows. Files are
validated concurrently, up to VALIDATE_CONCURRENCY at a time.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := a.validator()
			if err != nil {
				return err
			}
			p, err := a.openPacker(ctx)
			if err != nil {
				return err
			}
			defer p.Close() //nolint:errcheck

			results := make([]packedResult, len(args))
			var mu sync.Mutex
			failed := false

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(a.cfg.Concurrency, 1))
			for i, path := range args {
				g.Go(func() error {
					res := packedResult{File: path}
					tbl, doc, err := p.ReadParquet(gctx, path)
					if err != nil {
						res.Error = err.Error()
					} else {
						report := v.ValidateAll(doc, tbl, nil).Report()
						res.Report = &report
					}
					results[i] = res
					if res.Error != "" || !res.Report.IsValid {
						mu.Lock()
						failed = true
						mu.Unlock()
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				if err := PrintJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					if r.Error != "" {
						rows = append(rows, []string{r.File, "", "", "", r.Error})
						continue
					}
					status := "valid"
					if !r.Report.IsValid {
						status = "invalid"
					}
					rows = append(rows, []string{
						r.File,
						string(r.Report.QualityLevel),
						strconv.Itoa(len(r.Report.Errors)),
						strconv.Itoa(len(r.Report.Warnings)),
						status,
					})
				}
				PrintTable(cmd.OutOrStdout(), []string{"file", "level", "errors", "warnings", "status"}, rows)
			}
			if failed {
				return errInvalid
			}
			return nil
		},
	}
}
