package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputePairFingerprint produces a deterministic fingerprint for a
// drug-event evaluation so identical inputs can be recognized downstream.
func ComputePairFingerprint(drug DrugKey, event EventKey, inputs map[string]interface{}) Hash {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(string(drug))
	data.WriteString("|")
	data.WriteString(string(event))
	for _, key := range keys {
		data.WriteString("|")
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", inputs[key]))
	}

	return NewHash([]byte(data.String()))
}
