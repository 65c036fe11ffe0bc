package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"89001234567", "9001234567"},
		{"79001234567", "9001234567"},
		{"9001234567", "9001234567"},
		{"+79001234567", "9001234567"},
		{"+7 (900) 123-45-67", "9001234567"},
		// Too short: returned unchanged so the length check downstream fails.
		{"12345678", "12345678"},
		// 11 digits not starting with 7/8 are left alone.
		{"19001234567", "19001234567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("89001234567"))
	assert.True(t, IsValidPhone("+7 900 123 45 67"))
	assert.True(t, IsValidPhone("9001234567"))
	assert.False(t, IsValidPhone("12345678"))
	assert.False(t, IsValidPhone("123456789012"))
	assert.False(t, IsValidPhone(""))
}

func TestIsValidFullName(t *testing.T) {
	valid := []string{
		"Иванов Иван Иванович",
		"Мария-Елена Сидорова Петровна",
		"  Иванов Иван Иванович  ",
	}
	for _, name := range valid {
		assert.True(t, IsValidFullName(name), "expected valid: %q", name)
	}

	invalid := []string{
		"ivanov ivan",
		"Иванов Иван",
		"иванов иван иванович",
		"Иванов Иван Иванович Лишний",
		"Иванов2 Иван Иванович",
		"Иванов- Иван Иванович",
		"",
	}
	for _, name := range invalid {
		assert.False(t, IsValidFullName(name), "expected invalid: %q", name)
	}
}

func TestParseQuantity(t *testing.T) {
	qty, err := ParseQuantity("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, qty)

	// Comma decimal separator is accepted.
	qty, err = ParseQuantity("2,5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, qty)

	qty, err = ParseQuantity(" 100 ")
	require.NoError(t, err)
	assert.Equal(t, 100.0, qty)

	for _, in := range []string{"0", "-1", "100.01", "сто", ""} {
		_, err := ParseQuantity(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestExtractBerryName(t *testing.T) {
	assert.Equal(t, "Голубика", ExtractBerryName("Голубика — 500₽"))
	assert.Equal(t, "Смородина чёрная", ExtractBerryName("Смородина чёрная — 380₽"))
	assert.Equal(t, "Завершить заказ", ExtractBerryName("Завершить заказ"))
}
