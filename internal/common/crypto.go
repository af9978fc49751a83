package common

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

func CalculateHash(key string, inputs ...interface{}) string {
	if len(inputs) == 0 {
		return ""
	}
	h := hmac.New(sha256.New, []byte(key))
	for _, val := range inputs {
		switch v := val.(type) {
		case []byte:
			h.Write(v)
		default:
			h.Write([]byte(fmt.Sprintf("%v", v)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashEqual compares two hex digests in constant time.
func HashEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// GenerateOTP returns a numeric code of the given length, zero padded.
func GenerateOTP(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func GenerateSecret(n int) (string, error) {
	// each 3 bytes → 4 Base64 chars
	rawSize := (n*3 + 3) / 4
	raw := make([]byte, rawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)
	return secret[:n], nil
}
