package nrng

import (
	"golang.org/x/crypto/sha3"
)

const conditionerDomain = "nrng"

// condition compresses an over-sampled raw window into exactly bits uniform
// output bits using a cSHAKE256 sponge. Every input bit influences every
// output bit. A fresh sponge is used per window so no state can correlate
// outputs across requests.
func condition(window []byte, bits int) ([]byte, error) {
	if len(window) == 0 || bits <= 0 {
		return nil, ErrConditioning
	}

	sponge := sha3.NewCShake256(nil, []byte(conditionerDomain))
	sponge.Write(window)

	out := make([]byte, (bits+7)/8)
	sponge.Read(out)

	maskTail(out, bits)

	return out, nil
}
