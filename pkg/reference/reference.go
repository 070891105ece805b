// Package reference generates human-readable booking references of the form
// FB<YYYYMMDD><6 uppercase alphanumerics>, e.g. FB20260830K7Q2ZD.
package reference

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

const (
	prefix       = "FB"
	suffixLength = 6
	charset      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New builds a booking reference for the given instant. The date component
// uses UTC; the suffix is drawn from crypto/rand. Uniqueness is enforced by
// the storage layer, callers retry on collision.
func New(now time.Time) (string, error) {
	suffix, err := randomSuffix(rand.Reader)
	if err != nil {
		return "", err
	}
	return prefix + now.UTC().Format("20060102") + suffix, nil
}

// randomSuffix draws suffixLength characters uniformly from charset. Bytes at
// or above the largest multiple of len(charset) are rejected instead of
// folded, since folding would skew the draw toward the low characters.
func randomSuffix(src io.Reader) (string, error) {
	const limit = byte(256 - 256%len(charset))

	out := make([]byte, 0, suffixLength)
	buf := make([]byte, suffixLength)
	for len(out) < suffixLength {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, charset[int(b)%len(charset)])
			if len(out) == suffixLength {
				break
			}
		}
	}
	return string(out), nil
}
