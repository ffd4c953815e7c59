package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/jsonl"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("record not found")

// Record is one archived line with the columns indexed for lookup.
type Record struct {
	Seq           int64
	Digest        string
	ModelID       string
	SchemaVersion string
	CreatedAt     string
	IsValid       bool
	NodeCount     int
	EdgeCount     int
	Line          []byte
}

// Decode decodes the archived line.
func (r Record) Decode() (*ir.IR, error) {
	return jsonl.Decode(r.Line)
}

// Put archives x in its canonical line form. It reports whether a new row
// was written; archiving an identical instance again returns the existing
// record and false.
func (s *Store) Put(ctx context.Context, x *ir.IR) (Record, bool, error) {
	line, err := jsonl.Encode(x)
	if err != nil {
		return Record{}, false, fmt.Errorf("put: %w", err)
	}

	rec := Record{
		Digest:        ir.Digest(line),
		ModelID:       x.ModelID,
		SchemaVersion: x.Validation.SchemaVersion,
		CreatedAt:     ir.FormatTimestamp(x.Validation.CreatedAt),
		IsValid:       x.Validation.IsValid(),
		NodeCount:     x.Validation.NodeCount,
		EdgeCount:     x.Validation.EdgeCount,
		Line:          line,
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records
		(digest, model_id, schema_version, created_at, is_valid, node_count, edge_count, line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(digest) DO NOTHING
	`,
		rec.Digest,
		rec.ModelID,
		rec.SchemaVersion,
		rec.CreatedAt,
		rec.IsValid,
		rec.NodeCount,
		rec.EdgeCount,
		string(rec.Line),
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("put %s: %w", rec.ModelID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Record{}, false, fmt.Errorf("put %s: %w", rec.ModelID, err)
	}

	stored, err := s.Get(ctx, rec.Digest)
	if err != nil {
		return Record{}, false, err
	}
	return stored, n == 1, nil
}

// PutLine decodes line and archives the instance. Non-canonical but valid
// lines are stored re-encoded, so their digest matches the canonical form.
func (s *Store) PutLine(ctx context.Context, line []byte) (Record, bool, error) {
	x, err := jsonl.Decode(bytes.TrimRight(line, "\r\n"))
	if err != nil {
		return Record{}, false, fmt.Errorf("put line: %w", err)
	}
	return s.Put(ctx, x)
}

// Get returns the record with the given digest.
func (s *Store) Get(ctx context.Context, digest string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, digest, model_id, schema_version, created_at, is_valid, node_count, edge_count, line
		FROM records
		WHERE digest = ?
	`, digest)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s: %w", digest, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", digest, err)
	}
	return rec, nil
}

// ListModel returns every record of a model in archive order.
// Returns an empty slice (not nil) if the model has no records.
func (s *Store) ListModel(ctx context.Context, modelID string) ([]Record, error) {
	return s.query(ctx, `
		SELECT seq, digest, model_id, schema_version, created_at, is_valid, node_count, edge_count, line
		FROM records
		WHERE model_id = ?
		ORDER BY seq ASC, digest COLLATE BINARY ASC
	`, modelID)
}

// List returns every archived record in archive order.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	return s.query(ctx, `
		SELECT seq, digest, model_id, schema_version, created_at, is_valid, node_count, edge_count, line
		FROM records
		ORDER BY seq ASC, digest COLLATE BINARY ASC
	`)
}

// Latest returns the most recently archived record of a model.
func (s *Store) Latest(ctx context.Context, modelID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, digest, model_id, schema_version, created_at, is_valid, node_count, edge_count, line
		FROM records
		WHERE model_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, modelID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("latest %s: %w", modelID, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("latest %s: %w", modelID, err)
	}
	return rec, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec  Record
		line string
	)
	err := sc.Scan(
		&rec.Seq,
		&rec.Digest,
		&rec.ModelID,
		&rec.SchemaVersion,
		&rec.CreatedAt,
		&rec.IsValid,
		&rec.NodeCount,
		&rec.EdgeCount,
		&line,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Line = []byte(line)
	return rec, nil
}
