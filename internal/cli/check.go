package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stepgraph/internal/jsonl"
	"github.com/roach88/stepgraph/internal/schema"
)

// CheckReport is the schema outcome of one line.
type CheckReport struct {
	Line       int                `json:"line"`
	Conforms   bool               `json:"conforms"`
	Violations []schema.Violation `json:"violations,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// CheckResult summarizes a check run.
type CheckResult struct {
	Lines      []CheckReport `json:"lines"`
	Conforming int           `json:"conforming"`
	Failing    int           `json:"failing"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <records.jsonl>",
		Short: "Check record lines against the wire schema",
		Long: `Check matches every line of a record file against the embedded CUE
schema of the wire record: required keys, value types, node and edge
vocabularies, timestamp layout and validation block consistency.

The graph itself is not re-validated; use validate --revalidate for that.
Pass --print-schema to print the schema and exit.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printSchema, _ := cmd.Flags().GetBool("print-schema"); printSchema {
				fmt.Fprint(cmd.OutOrStdout(), schema.Source)
				return nil
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "check requires a records file")
			}
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().Bool("print-schema", false, "print the CUE schema and exit")

	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := schema.New()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to load schema", err)
	}

	r, err := openInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to open records", err)
	}
	defer r.Close()

	var result CheckResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), jsonl.MaxLineSize)
	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		rep := CheckReport{Line: n, Conforms: true}
		if err := s.Check(line); err != nil {
			rep.Conforms = false
			var ce *schema.ConformanceError
			if errors.As(err, &ce) {
				rep.Violations = ce.Violations
			} else {
				rep.Error = err.Error()
			}
			result.Failing++
		} else {
			result.Conforming++
		}
		result.Lines = append(result.Lines, rep)
	}
	if err := sc.Err(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to read line %d", n+1), err)
	}

	if opts.Format == "json" {
		if result.Lines == nil {
			result.Lines = []CheckReport{}
		}
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, rep := range result.Lines {
			switch {
			case rep.Conforms:
				formatter.VerboseLog("line %d conforms", rep.Line)
			case rep.Error != "":
				_ = formatter.Error(ErrCodeDecodeFailed, fmt.Sprintf("line %d: %s", rep.Line, rep.Error), nil)
			default:
				_ = formatter.Error(ErrCodeNonConforming, fmt.Sprintf("line %d does not conform", rep.Line), nil)
				for _, v := range rep.Violations {
					fmt.Fprintf(formatter.Writer, "  %s\n", v)
				}
			}
		}
		fmt.Fprintf(formatter.Writer, "%d conforming, %d failing\n", result.Conforming, result.Failing)
	}

	if result.Failing > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d records do not conform", result.Failing))
	}
	return nil
}
