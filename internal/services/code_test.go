package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var codeRE = regexp.MustCompile(`^REG-[0-9A-F]{8}$`)

func TestGenerateRegCode_Format(t *testing.T) {
	code := generateRegCode()
	require.Regexp(t, codeRE, code)
}

// 32 bits of entropy over 2000 draws; a collision here is vanishingly rare.
func TestGenerateRegCode_Unique(t *testing.T) {
	const n = 2000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		c := generateRegCode()
		_, dup := seen[c]
		require.Falsef(t, dup, "duplicate code %q on iteration %d", c, i)
		seen[c] = struct{}{}
	}
}
