package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// RandomData returns a slice of the specified size containing random data.
func RandomData(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("size cannot be negative")
	}

	data := make([]byte, size)
	_, err := rand.Read(data)
	if err != nil {
		return nil, fmt.Errorf("failed generating random data: %w", err)
	}

	return data, nil
}

// Hash returns the BLAKE2b-256 hash of data, with an optional key. It is used
// for storing API tokens, so that a database leak doesn't expose the tokens
// themselves.
func Hash(key string, data []byte) []byte {
	var keyData []byte
	if key != "" {
		keyData = []byte(key)
	}
	h, err := blake2b.New256(keyData)
	if err != nil {
		// Only possible if the key is longer than 64 bytes.
		panic(fmt.Sprintf("failed creating BLAKE2b hash: %s", err))
	}
	h.Write(data)

	return h.Sum(nil)
}
