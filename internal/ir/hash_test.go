package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestDeterminism(t *testing.T) {
	line := []byte(`{"model_id":"m1","nodes":[]}`)

	d1 := Digest(line)
	d2 := Digest(line)

	assert.Equal(t, d1, d2, "Digest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestDigestChangesWithContent(t *testing.T) {
	d1 := Digest([]byte(`{"model_id":"m1"}`))
	d2 := Digest([]byte(`{"model_id":"m2"}`))

	assert.NotEqual(t, d1, d2)
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// Without the separator "ab"+"c" and "a"+"bc" would collide.
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestDigestUsesRecordDomain(t *testing.T) {
	line := []byte("{}")

	h := sha256.New()
	h.Write([]byte("stepgraph/ir/v1"))
	h.Write([]byte{0x00})
	h.Write(line)

	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), Digest(line))
	assert.Equal(t, "stepgraph/ir/v1", DomainRecord)
}

func TestDigestDiffersFromPlainHash(t *testing.T) {
	line := []byte("{}")
	plain := sha256.Sum256(line)

	assert.NotEqual(t, hex.EncodeToString(plain[:]), Digest(line))
}
