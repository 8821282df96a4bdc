//go:build linux
// +build linux

package nrng

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type osSource struct{}

// OSSource returns the operating system noise source, emitting 8-bit symbols
// via the getrandom syscall.
func OSSource() Source {
	return osSource{}
}

func (osSource) Width() int {
	return 8
}

func (osSource) Pull(p []byte) (int, error) {
	n := 0

	for n < len(p) {
		m, err := unix.Getrandom(p[n:], 0)
		if err != nil {
			if err == unix.EINTR {
				continue
			}

			return n, fmt.Errorf("%w: getrandom: %v", ErrSourceUnavailable, err)
		}

		n += m
	}

	return n, nil
}
