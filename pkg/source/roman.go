package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadRoman indicates an invalid or out of range canto numeral.
var ErrBadRoman = errors.New("invalid roman number")

// MaxCanto is the highest canto number in any cantica.
const MaxCanto = 39

// ParseRoman parses a canto numeral between I and XXXIX.
func ParseRoman(s string) (int, error) {
	upper := strings.ToUpper(s)

	n := 0
	prev := 0
	for i := len(upper) - 1; i >= 0; i-- {
		var v int
		switch upper[i] {
		case 'I':
			v = 1
		case 'V':
			v = 5
		case 'X':
			v = 10
		default:
			return 0, fmt.Errorf("%w: %q", ErrBadRoman, s)
		}
		if v < prev {
			n -= v
		} else {
			n += v
			prev = v
		}
	}

	if n < 1 || n > MaxCanto || Roman(n) != upper {
		return 0, fmt.Errorf("%w: %q", ErrBadRoman, s)
	}
	return n, nil
}

// Roman formats n (1..39) as a roman numeral.
func Roman(n int) string {
	if n < 1 || n > MaxCanto {
		return ""
	}
	units := []string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX"}
	return strings.Repeat("X", n/10) + units[n%10]
}
