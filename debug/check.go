package debug

import (
	"crypto/sha256"
	"encoding/hex"
)

// CheckSum fingerprints an image dump so two runs can be compared.
func CheckSum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
