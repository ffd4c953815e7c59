package jsonl

import (
	"fmt"
	"io"
	"sync"

	"github.com/roach88/stepgraph/internal/ir"
)

// Writer appends encoded instances to an underlying stream, one per line.
//
// Every line is handed to the stream in a single Write call, so appends stay
// line-atomic on storage that guarantees atomic appends. Thread-safety:
// Writer is safe for concurrent use.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	lines int
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes x and appends it as one line. It returns the encoded line
// without its newline, e.g. for computing ir.Digest.
func (w *Writer) Write(x *ir.IR) ([]byte, error) {
	line, err := Encode(x)
	if err != nil {
		return nil, err
	}
	if err := w.WriteLine(line); err != nil {
		return nil, err
	}
	return line, nil
}

// WriteLine appends an already encoded line.
func (w *Writer) WriteLine(line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("write line %d: %w", w.lines+1, err)
	}
	w.lines++
	return nil
}

// WriteAll encodes every instance before writing any, so an encoding failure
// leaves the stream untouched.
func (w *Writer) WriteAll(xs []*ir.IR) error {
	lines := make([][]byte, len(xs))
	for i, x := range xs {
		line, err := Encode(x)
		if err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
		lines[i] = line
	}
	for _, line := range lines {
		if err := w.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}
