package browser

import "strings"

// NormalizePhone converts a raw tel: link or visible number into
// E.164. Russian local forms get the +7 prefix:
//
//	"8 999 123-45-67"  -> "+79991234567"
//	"9991234567"       -> "+79991234567"
//	"tel:+79991234567" -> "+79991234567"
//
// Returns "" when no digits survive.
func NormalizePhone(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "tel:")

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return ""
	}

	if len(d) == 10 && d[0] == '9' {
		d = "7" + d
	}
	if len(d) == 11 && d[0] == '8' {
		d = "7" + d[1:]
	}
	return "+" + d
}
