// Package store provides an SQLite-backed archive of encoded IR records.
//
// The archive is append-only and content addressed:
//   - Every record is stored in its canonical line form
//   - The key is ir.Digest of that line, so re-archiving the same logical
//     instance is a no-op
//   - seq (an autoincrement) orders records per model; timestamps are never
//     used for ordering
//
// All queries ORDER BY seq ASC, digest COLLATE BINARY ASC so results are
// deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
