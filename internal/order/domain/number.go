package domain

import (
	"crypto/rand"
	"math/big"
	"time"
)

const numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns a human-facing number like #ORD-20250131-K7QZ.
func NewOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}
	return "#ORD-" + now.UTC().Format("20060102") + "-" + string(suffix), nil
}
