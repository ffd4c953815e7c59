package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/stepgraph/internal/input"
	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/jsonl"
	"github.com/roach88/stepgraph/internal/pipeline"
	"github.com/roach88/stepgraph/internal/schema"
	"github.com/roach88/stepgraph/internal/testutil"
)

// Harness is the scenario execution engine.
// It builds with a fixed clock so runs are reproducible.
type Harness struct {
	schema *schema.Schema
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes pipeline logs to logger. By default they are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// New creates a harness.
func New(opts ...Option) (*Harness, error) {
	s, err := schema.New()
	if err != nil {
		return nil, err
	}
	h := &Harness{
		schema: s,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Run executes a scenario with a fresh harness.
func Run(s *Scenario) (*Result, error) {
	h, err := New()
	if err != nil {
		return nil, err
	}
	return h.Run(s)
}

// Run executes a scenario and returns the result.
//
// The returned error is reserved for scenarios that cannot run at all
// (unreadable input, unit errors). Failed checks and assertions are
// recorded in the result.
//
// Execution flow:
// 1. Load the input document and build it
// 2. Encode, then check round trip and schema conformance
// 3. Rebuild each shuffled permutation and compare records
// 4. Evaluate the assertions
func (h *Harness) Run(s *Scenario) (*Result, error) {
	in, err := input.Load(s.Input)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	x, line, err := h.build(in)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := NewResult()
	result.IR = x
	result.Record = line
	result.Digest = ir.Digest(line)

	if err := roundTrip(line); err != nil {
		result.AddError(fmt.Sprintf("round trip: %v", err))
	}

	if err := h.schema.Check(line); err != nil {
		result.AddError(fmt.Sprintf("schema: %v", err))
	}

	for _, seed := range s.ShuffleSeeds {
		shuffled := in
		shuffled.Nodes, shuffled.Edges = testutil.Shuffled(in.Nodes, in.Edges, seed)
		_, other, err := h.build(shuffled)
		if err != nil {
			result.AddError(fmt.Sprintf("shuffle seed %d: %v", seed, err))
			continue
		}
		if !bytes.Equal(line, other) {
			result.AddError(fmt.Sprintf("shuffle seed %d: record differs from unshuffled build", seed))
		}
	}

	for i, a := range s.Assertions {
		if err := evaluate(x, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return result, nil
}

func (h *Harness) build(in pipeline.Input) (*ir.IR, []byte, error) {
	x, err := pipeline.Build(in, pipeline.Options{
		Clock:  testutil.NewFixedClock(),
		Logger: h.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	line, err := jsonl.Encode(x)
	if err != nil {
		return nil, nil, err
	}
	return x, line, nil
}

// roundTrip decodes line and re-encodes it; the result must be identical.
func roundTrip(line []byte) error {
	decoded, err := jsonl.Decode(line)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	again, err := jsonl.Encode(decoded)
	if err != nil {
		return fmt.Errorf("re-encode failed: %w", err)
	}
	if !bytes.Equal(line, again) {
		return fmt.Errorf("re-encoded line differs from original")
	}
	return nil
}
