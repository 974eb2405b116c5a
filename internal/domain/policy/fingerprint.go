package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint hashes the records in file order. Tables with equal
// fingerprints arbitrate identically.
func Fingerprint(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintln(h, e.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}
