package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/pipeline"
	"github.com/roach88/stepgraph/internal/testutil"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// buildBracket builds the bracket fixture under modelID, stamped at
// testutil.Epoch plus offset.
func buildBracket(t *testing.T, modelID string, offset time.Duration) *ir.IR {
	t.Helper()
	x, err := pipeline.Build(pipeline.Input{
		ModelID: modelID,
		Nodes:   testutil.BracketNodes(),
		Edges:   testutil.BracketEdges(),
		Units:   testutil.BracketUnits(),
	}, pipeline.Options{Clock: testutil.NewDeterministicClock(testutil.Epoch.Add(offset), time.Second)})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return x
}
