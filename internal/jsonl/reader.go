package jsonl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/roach88/stepgraph/internal/ir"
)

// MaxLineSize bounds a single encoded instance.
const MaxLineSize = 256 << 20

// Reader decodes a stream of lines.
//
// A malformed line yields a *DecodeError (or *SchemaVersionError) carrying its
// line number; the next call to Next continues with the following line.
// Blank lines are skipped. Next returns io.EOF at the end of the stream.
type Reader struct {
	sc   *bufio.Scanner
	opts DecodeOptions
	line int
	raw  []byte
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opts DecodeOptions) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{sc: sc, opts: opts}
}

// Next decodes the next non-blank line.
func (r *Reader) Next() (*ir.IR, error) {
	for r.sc.Scan() {
		r.line++
		text := bytes.TrimRight(r.sc.Bytes(), "\r")
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		r.raw = slices.Clone(text)
		x, err := DecodeWith(r.raw, r.opts)
		if err != nil {
			return nil, withLine(err, r.line)
		}
		return x, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// Line returns the 1-based number of the line last returned by Next.
func (r *Reader) Line() int {
	return r.line
}

// Raw returns the bytes of the line last returned by Next, without newline.
func (r *Reader) Raw() []byte {
	return r.raw
}

// LineResult is the outcome of decoding one line with ReadAll.
type LineResult struct {
	Line int
	Raw  []byte
	IR   *ir.IR
	Err  error
}

// ReadAll decodes every line of r. Bad lines are reported in place and never
// hide good lines around them. The returned error is only set for stream
// failures.
func ReadAll(r io.Reader, opts DecodeOptions) ([]LineResult, error) {
	rd := NewReader(r, opts)
	var out []LineResult
	for {
		x, err := rd.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil && !IsDecodeError(err) && !IsSchemaVersionError(err) {
			return out, err
		}
		out = append(out, LineResult{Line: rd.Line(), Raw: rd.Raw(), IR: x, Err: err})
	}
}
