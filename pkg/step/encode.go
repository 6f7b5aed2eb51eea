package step

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// unset is the STEP marker for an attribute without a value.
const unset = "$"

// String encodes s as a STEP string literal including the quotes.
// Apostrophes and backslashes are doubled; characters outside printable
// ASCII use the \X2\ (UTF-16) control directive.
func String(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')

	var wide []rune
	flush := func() {
		if len(wide) == 0 {
			return
		}
		b.WriteString(`\X2\`)
		for _, u := range utf16.Encode(wide) {
			fmt.Fprintf(&b, "%04X", u)
		}
		b.WriteString(`\X0\`)
		wide = wide[:0]
	}

	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			wide = append(wide, r)
			continue
		}
		flush()
		switch r {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	flush()
	b.WriteByte('\'')
	return b.String()
}

// Real formats v in its shortest decimal form ("4", "0.2", "-1.5").
// Non-finite values are written as the unset marker.
func Real(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unset
	}
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// text converts a property value to display text.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
