// Package imaging wraps the perceptual-hash collaborator. The ledger only
// ever sees the 64-character bit strings produced here.
package imaging

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/corona10/goimagehash"
)

// HashBits is the fixed perceptual hash length (8x8 average hash).
const HashBits = 64

// AverageHash decodes an image and returns its 8x8 grayscale average hash as
// a 64-character bit string, row-major.
func AverageHash(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return "", fmt.Errorf("average hash: %w", err)
	}
	return fmt.Sprintf("%064b", hash.GetHash()), nil
}

// Distance returns the Hamming distance between two bit strings. Mismatched
// lengths count as maximally distant so malformed stored hashes never match.
func Distance(a, b string) int {
	if len(a) != len(b) {
		if len(a) > len(b) {
			return len(a)
		}
		return len(b)
	}
	dist := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist
}
