package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stepgraph/internal/jsonl"
	"github.com/roach88/stepgraph/internal/store"
)

// ArchiveOptions holds flags shared by import and export.
type ArchiveOptions struct {
	*RootOptions
	Database string
	Model    string
	Latest   bool
	Output   string
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// ExportResult summarizes an export run.
type ExportResult struct {
	Records int    `json:"records"`
	Output  string `json:"output,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <records.jsonl>",
		Short: "Archive every record of a file",
		Long: `Import decodes every line of a record file and archives it under its
content digest. Records already in the archive are skipped; lines that
fail to decode are reported and do not stop the import.

Example:
  stepgraph import models.jsonl --db archive.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write archived records as lines",
		Long: `Export writes archived records in archive order, one line each.
--model restricts the export to one model; --latest keeps only its most
recent record.

Example:
  stepgraph export --db archive.db --model bracket-001 --latest`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Model, "model", "", "export only this model id")
	cmd.Flags().BoolVar(&opts.Latest, "latest", false, "export only the latest record of --model")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "append records to this file instead of stdout")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ArchiveOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	r, err := openInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to open records", err)
	}
	defer r.Close()

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	lines, err := jsonl.ReadAll(r, jsonl.DecodeOptions{})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to read records", err)
	}

	var result ImportResult
	for _, l := range lines {
		if l.Err != nil {
			result.Failed++
			result.Errors = append(result.Errors, l.Err.Error())
			continue
		}
		rec, inserted, err := st.Put(ctx, l.IR)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to archive line %d", l.Line), err)
		}
		if inserted {
			result.Imported++
			formatter.VerboseLog("line %d: archived %s as %s", l.Line, rec.ModelID, rec.Digest)
		} else {
			result.Duplicates++
			formatter.VerboseLog("line %d: %s already archived", l.Line, rec.Digest)
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			_ = formatter.Error(ErrCodeDecodeFailed, e, nil)
		}
		fmt.Fprintf(formatter.Writer, "imported %d, skipped %d duplicates, %d failed\n",
			result.Imported, result.Duplicates, result.Failed)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d records could not be imported", result.Failed))
	}
	return nil
}

func runExport(opts *ArchiveOptions, cmd *cobra.Command) (err error) {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	if opts.Latest && opts.Model == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--latest requires --model", nil)
	}
	if opts.Format == "json" && opts.Output == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--format json requires --output", nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	var records []store.Record
	switch {
	case opts.Latest:
		rec, lerr := st.Latest(ctx, opts.Model)
		if errors.Is(lerr, store.ErrNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "no records for model "+opts.Model, nil)
		}
		err = lerr
		records = []store.Record{rec}
	case opts.Model != "":
		records, err = st.ListModel(ctx, opts.Model)
	default:
		records, err = st.List(ctx)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read archive", err)
	}

	out, err := openOutput(cmd, opts.Output)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to open output", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to close output", cerr)
		}
	}()

	w := jsonl.NewWriter(out)
	for _, rec := range records {
		if err := w.WriteLine(rec.Line); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write records", err)
		}
	}

	if opts.Output != "" {
		result := ExportResult{Records: w.Lines(), Output: opts.Output}
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "exported %d records to %s\n", result.Records, result.Output)
	}
	return nil
}
