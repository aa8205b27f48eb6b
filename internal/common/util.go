package common

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// AlphanumericUpper is the alphabet used for one-time reset codes.
const AlphanumericUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString draws n characters uniformly from alphabet using crypto/rand.
func RandomString(alphabet string, n int) (string, error) {
	if alphabet == "" {
		return "", errors.New("empty alphabet")
	}
	if n < 0 {
		return "", errors.New("negative length")
	}

	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
