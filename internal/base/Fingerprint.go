package base

import (
	"encoding/hex"
	"io"

	"github.com/minio/sha256-simd"
)

// Fingerprint is a general-purpose SHA-256 content digest -- NOT the
// ActionHistory command-line hash, which stays MD5 (see history.Digest)
// because its on-disk byte layout is a fixed wire contract. Fingerprint uses
// minio/sha256-simd over crypto/sha256 for speed. No other package in this
// module calls it.
type Fingerprint [sha256.Size]byte

func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

func (f Fingerprint) Valid() bool {
	for _, b := range f {
		if b != 0 {
			return true
		}
	}
	return false
}

func StringFingerprint(s string) Fingerprint {
	return Fingerprint(sha256.Sum256([]byte(s)))
}

func ReaderFingerprint(r io.Reader) (Fingerprint, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Fingerprint{}, err
	}
	var result Fingerprint
	copy(result[:], h.Sum(nil))
	return result, nil
}
