package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenShape(t *testing.T) {
	tok, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, tok, 64)
	assert.True(t, IsTokenShaped(tok))
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})

	for _i := 0; _i < 100; _i++ {
		tok, err := NewToken()
		require.NoError(t, err)

		_, dup := seen[tok]
		require.False(t, dup, "duplicate token generated")
		seen[tok] = struct{}{}
	}
}

func TestIsTokenShaped(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "empty", in: "", want: false},
		{name: "short", in: "abc123", want: false},
		{name: "uppercase", in: "ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789", want: false},
		{name: "non_hex", in: "zzzzzz0123456789abcdef0123456789abcdef0123456789abcdef0123456789", want: false},
		{name: "valid", in: "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTokenShaped(tt.in))
		})
	}
}
