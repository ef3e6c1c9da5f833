package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "lifter_01", NormalizeUsername("  Lifter_01  "))
	assert.Equal(t, "", NormalizeUsername("   "))
}

func TestValidUsername(t *testing.T) {
	valid := []string{"abc", "lifter_01", "a1_", "iron_mike_2024"}
	for _, name := range valid {
		assert.True(t, ValidUsername(name), "expected %q to be valid", name)
	}

	invalid := []string{
		"",
		"ab",                 // 太短
		"1abc",               // 数字开头
		"_abc",               // 下划线开头
		"Abc",                // 大写（调用方需先 normalize）
		"has space",
		"has-dash",
		"abcdefghijklmnopqrstuvwxyz01234", // 31 位
	}
	for _, name := range invalid {
		assert.False(t, ValidUsername(name), "expected %q to be invalid", name)
	}
}

func TestValidBirthYear(t *testing.T) {
	currentYear := time.Now().Year()

	assert.True(t, ValidBirthYear(1900))
	assert.True(t, ValidBirthYear(1990))
	assert.True(t, ValidBirthYear(currentYear))

	assert.False(t, ValidBirthYear(1899))
	assert.False(t, ValidBirthYear(1850))
	assert.False(t, ValidBirthYear(currentYear+1))
	assert.False(t, ValidBirthYear(0))
}

func TestValidDate(t *testing.T) {
	d, ok := ValidDate("2026-09-01")
	assert.True(t, ok)
	assert.Equal(t, time.September, d.Month())

	for _, bad := range []string{"", "01/09/2026", "2026-13-01", "2026-02-30", "yesterday"} {
		_, ok := ValidDate(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}
