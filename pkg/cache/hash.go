package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashFiles hashes the contents of files in sorted path order. Each file's
// digest is folded into the result, so renaming or reordering the inputs
// does not change the key unless the set of contents changes.
func HashFiles(paths []string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	outer := sha256.New()
	for _, p := range sorted {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		inner := sha256.New()
		_, err = io.Copy(inner, f)
		f.Close()
		if err != nil {
			return "", err
		}
		outer.Write(inner.Sum(nil))
	}
	return hex.EncodeToString(outer.Sum(nil)), nil
}
