package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/stepgraph/internal/input"
	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/jsonl"
	"github.com/roach88/stepgraph/internal/pipeline"
	"github.com/roach88/stepgraph/internal/store"
	"github.com/roach88/stepgraph/internal/units"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output    string
	Database  string
	Generator string
	Strict    bool
}

// BuildResult is the JSON payload of a successful build.
type BuildResult struct {
	ValidationReport
	Output string          `json:"output,omitempty"`
	Stored *bool           `json:"stored,omitempty"`
	Record json.RawMessage `json:"record,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <input>",
		Short: "Build a canonical record from a raw graph document",
		Long: `Build normalizes units, orders and validates a raw graph document
(YAML or JSON) and emits its canonical record as one line.

Without --output the line is printed to stdout; with --output it is
appended to the file. --db also archives the record.

Example:
  stepgraph build bracket.yaml
  stepgraph build bracket.yaml -o models.jsonl --db archive.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "append the record to this file instead of stdout")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the record in this SQLite database")
	cmd.Flags().StringVar(&opts.Generator, "generator", "", "generator identity recorded in provenance")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when the record reports errors or warnings")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	in, err := input.Load(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInputInvalid, "failed to load input", err)
	}
	formatter.VerboseLog("Loaded %s: %d nodes, %d edges", path, len(in.Nodes), len(in.Edges))

	x, err := pipeline.Build(in, pipeline.Options{
		Clock:     opts.Clock,
		Logger:    logger,
		Generator: opts.Generator,
	})
	if err != nil {
		code := ErrCodeInputInvalid
		if units.IsUnitError(err) {
			code = ErrCodeUnits
		}
		return formatter.Fail(ExitCommandError, code, "failed to build model", err)
	}

	line, err := jsonl.Encode(x)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode model", err)
	}
	result := BuildResult{ValidationReport: newValidationReport(x, ir.Digest(line))}

	if opts.Output != "" {
		if err := appendLine(cmd, opts.Output, line); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
		}
		result.Output = opts.Output
	}

	if opts.Database != "" {
		inserted, err := archive(cmd, opts.Database, x)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to archive record", err)
		}
		result.Stored = &inserted
	}

	if opts.Format == "json" {
		if opts.Output == "" {
			result.Record = line
		}
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		if opts.Output == "" {
			if err := jsonl.NewWriter(cmd.OutOrStdout()).WriteLine(line); err != nil {
				return WrapExitError(ExitCommandError, "failed to write record", err)
			}
		}
		// The report goes to stderr when stdout carries the record.
		report := &OutputFormatter{Format: formatter.Format, Writer: cmd.ErrOrStderr()}
		if opts.Output != "" {
			report.Writer = cmd.OutOrStdout()
		}
		report.Report(x.ModelID, x.Validation)
		formatter.VerboseLog("digest %s", result.Digest)
	}

	if opts.Strict && (!x.Validation.IsValid() || len(x.Validation.Warnings) > 0) {
		return NewExitError(ExitFailure, "model "+x.ModelID+" did not pass strict validation")
	}
	return nil
}

// appendLine appends one line to the file at path.
func appendLine(cmd *cobra.Command, path string, line []byte) (err error) {
	f, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return jsonl.NewWriter(f).WriteLine(line)
}

// archive stores x in the database at path and reports whether it was new.
func archive(cmd *cobra.Command, path string, x *ir.IR) (bool, error) {
	st, err := store.Open(path)
	if err != nil {
		return false, err
	}
	defer st.Close()

	_, inserted, err := st.Put(commandContext(cmd), x)
	return inserted, err
}
