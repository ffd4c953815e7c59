package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/jsonl"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Revalidate bool
	Strict     bool
}

// LineReport is the outcome of one record line.
type LineReport struct {
	Line int `json:"line"`
	*ValidationReport
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// ValidateResult summarizes a validate run.
type ValidateResult struct {
	Lines   []LineReport `json:"lines"`
	Valid   int          `json:"valid"`
	Invalid int          `json:"invalid"`
	Failed  int          `json:"failed"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <records.jsonl>",
		Short: "Report the validation status of every record in a file",
		Long: `Validate decodes every line of a record file and reports its
validation block. Lines that fail to decode are reported in place and
never hide the lines around them.

--revalidate recomputes each report from the decoded graph instead of
trusting the stored one. Use "-" to read stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Revalidate, "revalidate", false, "recompute validation reports")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	r, err := openInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to open records", err)
	}
	defer r.Close()

	lines, err := jsonl.ReadAll(r, jsonl.DecodeOptions{Revalidate: opts.Revalidate, Clock: opts.Clock})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to read records", err)
	}

	result := ValidateResult{Lines: make([]LineReport, 0, len(lines))}
	for _, l := range lines {
		lr := LineReport{Line: l.Line}
		switch {
		case l.Err != nil:
			lr.Error = l.Err.Error()
			lr.ErrorCode = decodeErrorCode(l.Err)
			result.Failed++
		case !passes(l.IR, opts.Strict):
			rep := newValidationReport(l.IR, lineDigest(l.IR))
			lr.ValidationReport = &rep
			result.Invalid++
		default:
			rep := newValidationReport(l.IR, lineDigest(l.IR))
			lr.ValidationReport = &rep
			result.Valid++
		}
		result.Lines = append(result.Lines, lr)
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, l := range lines {
			label := fmt.Sprintf("line %d", l.Line)
			if l.Err != nil {
				_ = formatter.Error(decodeErrorCode(l.Err), l.Err.Error(), nil)
				continue
			}
			formatter.Report(label+": "+l.IR.ModelID, l.IR.Validation)
		}
		fmt.Fprintf(formatter.Writer, "%d valid, %d invalid, %d unreadable\n", result.Valid, result.Invalid, result.Failed)
	}

	if result.Invalid > 0 || result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d records did not pass", result.Invalid+result.Failed, len(lines)))
	}
	return nil
}

func passes(x *ir.IR, strict bool) bool {
	if !x.Validation.IsValid() {
		return false
	}
	return !strict || len(x.Validation.Warnings) == 0
}

// lineDigest is the digest of x's canonical line. Decoded instances always
// re-encode, so an error here means the instance is stale and has no digest.
func lineDigest(x *ir.IR) string {
	line, err := jsonl.Encode(x)
	if err != nil {
		return ""
	}
	return ir.Digest(line)
}

func decodeErrorCode(err error) string {
	if jsonl.IsSchemaVersionError(err) {
		return ErrCodeSchemaVersion
	}
	return ErrCodeDecodeFailed
}
