package fees

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Digest is a Keccak-256 hash over the canonical JSON encoding of the result.
// Re-evaluating identical inputs yields the same digest, which lets callers
// audit that an executed instruction set matches what was quoted.
func (r *DistributionResult) Digest() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode distribution result: %w", err)
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
