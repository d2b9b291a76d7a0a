// Package slug generates random short codes for links.
package slug

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Alphabet is base62 plus the two URL-safe punctuation characters,
// so every symbol carries exactly 6 bits.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_-"

// Length of a generated slug
const Length = 7

const (
	base     = uint64(len(Alphabet))
	bitsEach = 6
	mask     = 1<<bitsEach - 1
)

// Generator produces slugs. The default reads from crypto/rand.
type Generator func() (string, error)

// Generate returns a random slug of Length characters
func Generate() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return Encode(binary.BigEndian.Uint64(buf[:]), Length), nil
}

// Encode writes the low width*6 bits of num as exactly width symbols,
// most significant first.
func Encode(num uint64, width int) string {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = Alphabet[num&mask]
		num >>= bitsEach
	}
	return string(out)
}

// Decode converts a slug produced by Encode back to its number.
// ok is false when s contains a symbol outside Alphabet or is too long.
func Decode(s string) (num uint64, ok bool) {
	if len(s)*bitsEach > 64 {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		idx := indexOf(s[i])
		if idx < 0 {
			return 0, false
		}
		num = num*base + uint64(idx)
	}
	return num, true
}

func indexOf(char byte) int {
	for i := 0; i < len(Alphabet); i++ {
		if Alphabet[i] == char {
			return i
		}
	}
	return -1
}
