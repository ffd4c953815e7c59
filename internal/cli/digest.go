package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stepgraph/internal/jsonl"
)

// DigestEntry is the content address of one record line.
type DigestEntry struct {
	Line    int    `json:"line"`
	Digest  string `json:"digest,omitempty"`
	ModelID string `json:"model_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewDigestCommand creates the digest command.
func NewDigestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "digest <records.jsonl>",
		Short: "Print the content digest of every record",
		Long: `Digest prints the content address of every record line, computed
over its canonical form. Two records with equal digests describe the
same model state, byte for byte.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(rootOpts, args[0], cmd)
		},
	}
}

func runDigest(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	r, err := openInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to open records", err)
	}
	defer r.Close()

	lines, err := jsonl.ReadAll(r, jsonl.DecodeOptions{})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to read records", err)
	}

	entries := make([]DigestEntry, 0, len(lines))
	failed := 0
	for _, l := range lines {
		e := DigestEntry{Line: l.Line}
		if l.Err != nil {
			e.Error = l.Err.Error()
			failed++
		} else {
			e.Digest = lineDigest(l.IR)
			e.ModelID = l.IR.ModelID
		}
		entries = append(entries, e)
	}

	if opts.Format == "json" {
		if err := formatter.Success(entries); err != nil {
			return err
		}
	} else {
		for _, e := range entries {
			if e.Error != "" {
				_ = formatter.Error(ErrCodeDecodeFailed, e.Error, nil)
				continue
			}
			fmt.Fprintf(formatter.Writer, "%s  %s\n", e.Digest, e.ModelID)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d records could not be decoded", failed))
	}
	return nil
}
