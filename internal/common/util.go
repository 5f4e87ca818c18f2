package common

import (
	"crypto/rand"
	"fmt"
)

// GenerateRandByteArray returns size bytes read from crypto/rand.
// It panics if the system random source fails, which is unrecoverable.
func GenerateRandByteArray(size int) []byte {
	b, err := ReadRandBytes(size)
	if err != nil {
		panic(err)
	}
	return b
}

// ReadRandBytes returns size bytes read from crypto/rand. A short read is
// reported as an error, so the result always carries size random bytes.
func ReadRandBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	n, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("short random read: %d of %d bytes", n, size)
	}
	return b, nil
}

// WipeByteArray overwrites b with zeros. Use it for passwords and key
// material once they are no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
