package mutate

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync/atomic"

	"hierarchy-cli/internal/model"
)

var idFallbackSeq atomic.Uint64

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:])), nil
}

// NewNodeID returns a fresh node id not present in f.
func NewNodeID(f model.Forest) string {
	for i := 0; i < 20; i++ {
		id, err := newRandomID("node")
		if err != nil {
			break
		}
		if Find(f, id) == nil {
			return id
		}
	}
	// crypto/rand failing (or 20 collisions) is not worth surfacing to the operator.
	for {
		id := fmt.Sprintf("node-%d", idFallbackSeq.Add(1))
		if Find(f, id) == nil {
			return id
		}
	}
}
