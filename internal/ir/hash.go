package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainRecord is the domain prefix for content-addressed record identity.
// Version suffix enables future algorithm migration.
const DomainRecord = "stepgraph/ir/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // Null separator prevents domain/data boundary ambiguity
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes the content address of one encoded IR line.
// The line must not include its trailing newline. Because the encoding is
// canonical, equal logical content always yields the same digest, which
// makes it usable as a cache and diff key.
func Digest(line []byte) string {
	return hashWithDomain(DomainRecord, line)
}
