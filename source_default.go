//go:build !linux
// +build !linux

package nrng

import (
	"crypto/rand"
	"fmt"
	"io"
)

type osSource struct{}

// OSSource returns the operating system noise source, emitting 8-bit symbols
// via the platform CSPRNG device.
func OSSource() Source {
	return osSource{}
}

func (osSource) Width() int {
	return 8
}

func (osSource) Pull(p []byte) (int, error) {
	n, err := io.ReadFull(rand.Reader, p)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	return n, nil
}
