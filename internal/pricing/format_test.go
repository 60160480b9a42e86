package pricing

import (
	"math"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func TestFormatNaNIsSentinel(t *testing.T) {
	f := NewFormatter(DefaultLocale, DefaultSymbol)

	assert.Equal(t, "$0", f.Format(math.NaN()))
	assert.Equal(t, "$0", f.Format(math.Inf(1)-math.Inf(1)))
}

func TestFormatZero(t *testing.T) {
	f := NewFormatter(DefaultLocale, DefaultSymbol)
	out := f.Format(0)

	assert.True(t, strings.HasPrefix(out, "$"))
	assert.Contains(t, out, "0")
}

func TestFormatLargeAmountKeepsAllDigits(t *testing.T) {
	f := NewFormatter(DefaultLocale, DefaultSymbol)
	out := f.Format(1000000)

	assert.True(t, strings.HasPrefix(out, "$"))
	assert.Equal(t, "1000000", digitsOnly(out))
}

func TestFormatRoundsToWholeUnits(t *testing.T) {
	f := NewFormatter(DefaultLocale, DefaultSymbol)

	assert.Equal(t, "80580", digitsOnly(f.Format(80580.0000001)))
	assert.Equal(t, "1500", digitsOnly(f.Format(1499.6)))
	assert.NotContains(t, f.Format(1499.6), ",")
}

func TestFormatNegative(t *testing.T) {
	f := NewFormatter(DefaultLocale, DefaultSymbol)
	out := f.Format(-2500)

	assert.True(t, strings.HasPrefix(out, "-$"))
	assert.Equal(t, "2500", digitsOnly(out))
}

func TestFormatterFallsBackOnBadLocale(t *testing.T) {
	f := NewFormatter("not a locale", "")

	assert.Equal(t, "$0", f.Format(math.NaN()))
	assert.Equal(t, "42", digitsOnly(f.Format(42)))
}
