package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Senior Engineer", CleanText("  Senior  Engineer \n"))
	assert.Equal(t, "a b c", CleanText("a\n\tb   c"))
	assert.Equal(t, "", CleanText("   "))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "", TruncateRunes("abc", 0))
}

func TestTitleCaseIfUniform(t *testing.T) {
	assert.Equal(t, "Senior Engineer", TitleCaseIfUniform("SENIOR ENGINEER"))
	assert.Equal(t, "Senior Engineer", TitleCaseIfUniform("senior engineer"))
	// mixed case is someone's deliberate styling; leave it alone
	assert.Equal(t, "Senior iOS Engineer", TitleCaseIfUniform("Senior iOS Engineer"))
	assert.Equal(t, "2024", TitleCaseIfUniform("2024"))
	assert.Equal(t, "", TitleCaseIfUniform(""))
}
