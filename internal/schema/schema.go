// Package schema checks encoded IR lines against the embedded CUE schema of
// the wire record.
//
// The check is structural: key presence, value types, kind vocabularies,
// timestamp layout and the consistency of the validation block with the
// node and edge arrays. It never re-runs the graph validator.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

// Source is the CUE text of the record schema.
//
//go:embed record.cue
var Source string

// Violation is one schema mismatch.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ConformanceError lists every mismatch found in one line.
type ConformanceError struct {
	Violations []Violation
}

func (e *ConformanceError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "record does not conform to schema: " + strings.Join(parts, "; ")
}

// Schema is a compiled record schema. It is safe for concurrent use.
type Schema struct {
	mu     sync.Mutex // cue.Context is not safe for concurrent use
	ctx    *cue.Context
	root   cue.Value
	record cue.Value
}

// New compiles the embedded schema.
func New() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(Source, cue.Filename("record.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile record schema: %w", err)
	}
	record := v.LookupPath(cue.ParsePath("#Record"))
	if !record.Exists() {
		return nil, fmt.Errorf("record schema has no #Record definition")
	}
	return &Schema{ctx: ctx, root: v, record: record}, nil
}

// Check reports whether line is a conforming record. Malformed JSON is
// returned as a plain error; schema mismatches as *ConformanceError.
func (s *Schema) Check(line []byte) error {
	expr, err := cuejson.Extract("line", line)
	if err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.ctx.BuildExpr(expr)
	if err := data.Err(); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if err := s.record.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return conformanceError(err)
	}
	return nil
}

// FloatPrecision returns the precision pinned by the schema.
func (s *Schema) FloatPrecision() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.LookupPath(cue.ParsePath("#FloatPrecision")).Int64()
}

func conformanceError(err error) *ConformanceError {
	var out ConformanceError
	seen := make(map[Violation]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if !seen[v] {
			seen[v] = true
			out.Violations = append(out.Violations, v)
		}
	}
	if len(out.Violations) == 0 {
		out.Violations = []Violation{{Message: err.Error()}}
	}
	return &out
}
