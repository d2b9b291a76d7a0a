package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/link-shortener/internal/validator"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    uint64
		width    int
		expected string
	}{
		{"zero pads", 0, 7, "0000000"},
		{"ten becomes 'a'", 10, 1, "a"},
		{"thirty-six becomes 'A'", 36, 1, "A"},
		{"sixty-two becomes '_'", 62, 1, "_"},
		{"sixty-three becomes '-'", 63, 1, "-"},
		{"sixty-four carries", 64, 2, "10"},
		{"high bits are dropped", 1<<42 | 1, 7, "0000001"},
		{"all ones", 1<<42 - 1, 7, "-------"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.input, tt.width))
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, num := range []uint64{0, 1, 63, 64, 12345, 1<<42 - 1} {
		decoded, ok := Decode(Encode(num, Length))
		require.True(t, ok)
		assert.Equal(t, num, decoded)
	}
}

func TestDecode_Rejects(t *testing.T) {
	_, ok := Decode("abc!")
	assert.False(t, ok)

	_, ok = Decode("aaaaaaaaaaaa")
	assert.False(t, ok, "12 symbols need 72 bits")
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := Generate()
		require.NoError(t, err)
		require.Len(t, s, Length)
		require.Regexp(t, validator.SlugPattern, s, "generated slugs must be valid custom slugs too")
		seen[s] = true
	}
	// 42 bits of entropy: a collision in 1000 draws would point at a broken source
	assert.Len(t, seen, 1000)
}
