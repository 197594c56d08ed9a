package common

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// TokenLength is the size in bytes of an API token.
const TokenLength = 32

// EncodeToken returns the string form of a raw API token.
func EncodeToken(token []byte) string {
	return base58.Encode(token)
}

// DecodeToken parses the given token string and returns the raw token bytes.
func DecodeToken(token string) ([]byte, error) {
	if len(token) == 0 {
		return nil, errors.New("empty token")
	}

	tokenDec, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("failed decoding token: %w", err)
	}
	if len(tokenDec) != TokenLength {
		return nil, ErrInvalidToken
	}

	return tokenDec, nil
}
