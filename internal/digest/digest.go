// Package digest derives content identifiers for composed documents so two
// builds can be compared without diffing their text.
package digest

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Of returns a CIDv1 using the "raw" multicodec and a sha2-256 multihash.
func Of(text string) (string, error) {
	c, err := CID([]byte(text))
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// CID returns the CIDv1 (raw + sha2-256) of data.
func CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("digest: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Verify reports whether text hashes to the given CID string.
func Verify(text, want string) (bool, error) {
	parsed, err := cid.Decode(want)
	if err != nil {
		return false, fmt.Errorf("digest: decode %s: %w", want, err)
	}
	got, err := CID([]byte(text))
	if err != nil {
		return false, err
	}
	return parsed.Equals(got), nil
}
