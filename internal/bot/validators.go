package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// NormalizePhone reduces a phone number to the bare 10-digit form used
// as the user-store key: strips formatting, then drops a leading 7 or 8
// from an 11-digit number. Anything else is returned digits-only as is
// and fails the length check downstream.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)

	if len(digits) == 11 && (digits[0] == '7' || digits[0] == '8') {
		return digits[1:]
	}
	return digits
}

// IsValidPhone reports whether the number normalizes to exactly 10 digits.
func IsValidPhone(phone string) bool {
	return len(NormalizePhone(phone)) == 10
}

// Full name: three capitalized Cyrillic words, hyphens allowed inside a
// word ("Мария-Елена Сидорова Петровна").
const namePart = `[А-ЯЁ][а-яё]+(?:-[А-ЯЁ][а-яё]+)*`

var fullNameRe = regexp.MustCompile(`^` + namePart + ` ` + namePart + ` ` + namePart + `$`)

func IsValidFullName(name string) bool {
	return fullNameRe.MatchString(strings.TrimSpace(name))
}

// ParseQuantity parses a kilogram quantity, accepting both comma and
// dot as the decimal separator. Valid quantities are in (0, 100].
func ParseQuantity(text string) (float64, error) {
	text = strings.Replace(strings.TrimSpace(text), ",", ".", 1)
	qty, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if qty <= 0 || qty > 100 {
		return 0, fmt.Errorf("quantity %v out of range (0, 100]", qty)
	}
	return qty, nil
}

// ExtractBerryName recovers the berry name from a menu button label
// like "Голубика — 500₽". Unrecognized labels are returned trimmed.
func ExtractBerryName(text string) string {
	if i := strings.Index(text, "—"); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}
