// Package money parses and formats the money and percentage values typed into
// campaign forms.
package money

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDecimal is returned when input cannot be read as a decimal number.
var ErrInvalidDecimal = errors.New("money: invalid decimal")

// maxDigits bounds the integer part so hundredths fit in an int64.
const maxDigits = 15

// ParseHundredths reads a decimal typed with either comma or dot as the
// decimal separator and returns it in hundredths, rounded half-up (away from
// zero) on the third fractional digit.
//
// When both separators appear, the last one is the decimal separator and the
// other is a thousands separator. A separator that repeats is a thousands
// separator. Currency symbols, percent signs and spaces are ignored.
func ParseHundredths(s string) (int64, error) {
	clean := strings.NewReplacer("R$", "", "%", "", " ", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDecimal)
	}

	negative := false
	switch clean[0] {
	case '-':
		negative = true
		clean = clean[1:]
	case '+':
		clean = clean[1:]
	}

	decimalAt := decimalIndex(clean)
	var intPart, fracPart strings.Builder
	for i, r := range clean {
		switch {
		case r >= '0' && r <= '9':
			if decimalAt >= 0 && i > decimalAt {
				fracPart.WriteRune(r)
			} else {
				intPart.WriteRune(r)
			}
		case r == ',' || r == '.':
			// thousands separators and the decimal separator carry no digits
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
		}
	}
	if intPart.Len() == 0 && fracPart.Len() == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	if intPart.Len() > maxDigits {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidDecimal, s)
	}

	var whole int64
	for _, r := range intPart.String() {
		whole = whole*10 + int64(r-'0')
	}
	frac := fracPart.String()
	for len(frac) < 3 {
		frac += "0"
	}
	cents := int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	if frac[2] >= '5' {
		cents++
	}

	total := whole*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}

// ParseLocaleDecimal is ParseHundredths expressed as a float with two decimal
// places.
func ParseLocaleDecimal(s string) (float64, error) {
	h, err := ParseHundredths(s)
	if err != nil {
		return 0, err
	}
	return float64(h) / 100, nil
}

// decimalIndex returns the byte offset of the decimal separator in s, or -1
// when s has none.
func decimalIndex(s string) int {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		return max(lastComma, lastDot)
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return -1
		}
		return lastComma
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return -1
		}
		return lastDot
	}
	return -1
}
