// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	alphanumericCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digitCharset        = "0123456789"
)

func GenerateRandomString(length int) (string, error) {
	return randomFromCharset(alphanumericCharset, length)
}

func GenerateNumericCode(length int) (string, error) {
	return randomFromCharset(digitCharset, length)
}

// GenerateOrderNumber returns a human readable order number such as ORD-20260115-4821.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix, err := GenerateNumericCode(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix), nil
}

func randomFromCharset(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}
