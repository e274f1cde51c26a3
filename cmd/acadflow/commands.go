package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acadflow/acadflow/internal/core"
	"github.com/acadflow/acadflow/internal/grid"
	"github.com/acadflow/acadflow/internal/store"
	"github.com/acadflow/acadflow/internal/tabular"
)

var errImportFailed = errors.New("import failed")

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the record kinds and their columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tLABEL\tCOLUMNS")
			for _, p := range a.service.Presets() {
				headers := make([]string, len(p.Columns))
				for i, f := range p.Columns {
					headers[i] = f.Header
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Kind, p.Label, strings.Join(headers, ", "))
			}
			return tw.Flush()
		},
	}
}

type importOptions struct {
	kind   string
	file   string
	dryRun bool
}

// importOutput is the report printed by the import command. Parsed rows are
// left out since they are already in the store.
type importOutput struct {
	Kind     string          `json:"kind"`
	File     string          `json:"file"`
	Summary  tabular.Summary `json:"summary"`
	Inserted int             `json:"inserted"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	DryRun   bool            `json:"dryRun,omitempty"`
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV or Excel file into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), a, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "record kind, as listed by the presets command")
	cmd.Flags().StringVar(&opts.file, "file", "", "file to import (.csv or .xlsx)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate the file without persisting")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, a *app, opts importOptions, out io.Writer) error {
	svc := a.service
	if opts.dryRun {
		var err error
		if svc, err = a.scratch(); err != nil {
			return err
		}
	}

	report, err := importFile(ctx, svc, opts.kind, opts.file)
	if err != nil {
		return err
	}

	result := importOutput{
		Kind:     report.Kind,
		File:     report.File,
		Summary:  report.Summary,
		Inserted: report.Inserted,
		Errors:   report.Errors,
		Warnings: report.Warnings,
		DryRun:   opts.dryRun,
	}
	if opts.dryRun {
		result.Inserted = 0
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("%w: %s", errImportFailed, report.Errors[0])
	}
	return nil
}

func importFile(ctx context.Context, svc *core.Service, kind, path string) (*core.ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return svc.Import(ctx, kind, filepath.Base(path), f)
}

type exportOptions struct {
	kind    string
	format  string
	out     string
	search  string
	filters map[string]string
	sort    string
	desc    bool
	hidden  []string
}

func (o exportOptions) query() core.Query {
	q := core.Query{Search: o.search, Filters: o.filters, Sort: o.sort, Hidden: o.hidden}
	if o.desc {
		q.Dir = grid.SortDesc
	}
	return q
}

func addOutputFlags(cmd *cobra.Command, format, out *string) {
	cmd.Flags().StringVar(format, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVar(out, "out", ".", "output directory, or - for stdout")
}

func newExportCmd(a *app) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored records of one kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := tabular.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			art, err := a.service.Export(cmd.Context(), opts.kind, opts.query(), format, sinkFor(opts.out, cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			return reportArtifact(cmd, opts.out, art)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "record kind")
	addOutputFlags(cmd, &opts.format, &opts.out)
	cmd.Flags().StringVar(&opts.search, "search", "", "keep rows containing this text")
	cmd.Flags().StringToStringVar(&opts.filters, "filter", nil, "column filter, as field=value (repeatable)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "field to sort by")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort in descending order")
	cmd.Flags().StringSliceVar(&opts.hidden, "hide", nil, "fields to leave out of the file")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func newTemplateCmd(a *app) *cobra.Command {
	var kind, format, out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty file with the headers of one kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tabular.ParseFormat(format)
			if err != nil {
				return err
			}
			art, err := a.service.Template(cmd.Context(), kind, f, sinkFor(out, cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			return reportArtifact(cmd, out, art)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "record kind")
	addOutputFlags(cmd, &format, &out)
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

type convertOptions struct {
	exportOptions
	file string
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Validate a file and re-export its valid rows, without touching the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := tabular.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			svc, err := a.scratch()
			if err != nil {
				return err
			}

			report, err := importFile(cmd.Context(), svc, opts.kind, opts.file)
			if err != nil {
				return err
			}
			if report.Failed() {
				return fmt.Errorf("%w: %s", errImportFailed, report.Errors[0])
			}
			for _, msg := range report.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}

			art, err := svc.Export(cmd.Context(), opts.kind, opts.query(), format, sinkFor(opts.out, cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			return reportArtifact(cmd, opts.out, art)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "record kind")
	cmd.Flags().StringVar(&opts.file, "file", "", "file to convert (.csv or .xlsx)")
	addOutputFlags(cmd, &opts.format, &opts.out)
	cmd.Flags().StringVar(&opts.search, "search", "", "keep rows containing this text")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "field to sort by")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort in descending order")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// scratch builds a service over a fresh in-memory store with the same settings.
func (a *app) scratch() (*core.Service, error) {
	return core.NewService(store.NewMemory(), core.Options{
		Locale:   a.cfg.Locale.Tabular(),
		PageSize: a.cfg.Grid.PageSize,
	})
}

func sinkFor(out string, stdout io.Writer) tabular.Sink {
	if out == "-" {
		return tabular.SinkFunc(func(_ context.Context, art tabular.Artifact) error {
			_, err := stdout.Write(art.Data)
			return err
		})
	}
	return tabular.DirSink{Dir: out}
}

func reportArtifact(cmd *cobra.Command, out string, art tabular.Artifact) error {
	if out == "-" {
		return nil
	}
	_, err := fmt.Fprintln(cmd.ErrOrStderr(), "wrote", filepath.Join(out, art.Name))
	return err
}
