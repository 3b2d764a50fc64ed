package gnuplot

import (
	"strconv"
	"strings"
)

// FormatFloat renders v the way the .dat format has always carried numbers:
// shortest round-trip digits, a trailing ".0" on integral values, and
// exponent notation below 1e-4 or from 1e16 on (0.0, 0.016, 1e-05, 1e+16).
func FormatFloat(v float64) string {
	e := strconv.FormatFloat(v, 'e', -1, 64)
	mant, expStr, ok := strings.Cut(e, "e")
	if !ok {
		// NaN or Inf.
		return e
	}
	exp, err := strconv.Atoi(expStr)
	if err != nil {
		return e
	}
	if exp < -4 || exp >= 16 {
		return mant + "e" + expStr
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
