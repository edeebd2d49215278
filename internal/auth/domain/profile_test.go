package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pw, err := GenerateRandomPassword()
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(passwordChars, r), "unexpected char %q", r)
		}
		seen[pw] = true
	}
	assert.Len(t, seen, 50)
}

func TestCustomerEmail(t *testing.T) {
	assert.Equal(t, "11988887777@customer.local", CustomerEmail("(11) 98888-7777"))
	assert.Equal(t, "@customer.local", CustomerEmail("abc"))
}
