package archive

import (
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
)

// Fingerprinter computes content digests used as an equality oracle.
type Fingerprinter interface {
	Fingerprint(r io.Reader) (digest.Digest, error)
}

// DigestFingerprinter hashes content with a go-digest algorithm.
type DigestFingerprinter struct {
	alg digest.Algorithm
}

// Ensure DigestFingerprinter implements Fingerprinter
var _ Fingerprinter = (*DigestFingerprinter)(nil)

// NewFingerprinter creates a SHA-256 fingerprinter.
func NewFingerprinter() *DigestFingerprinter {
	return &DigestFingerprinter{alg: digest.Canonical}
}

func (f *DigestFingerprinter) Fingerprint(r io.Reader) (digest.Digest, error) {
	d, err := f.alg.FromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to compute %s digest: %w", f.alg, err)
	}
	return d, nil
}

// fingerprintLocation digests a whole archive.
func fingerprintLocation(src Source, fp Fingerprinter, location string) (digest.Digest, error) {
	rc, err := src.Open(location)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return fp.Fingerprint(rc)
}
