package recency

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursMinutesRe = regexp.MustCompile(`(\d+)\s*ч(?:\D+?(\d+)\s*мин)?`)
	minutesOnlyRe  = regexp.MustCompile(`(\d+)\s*мин`)
)

// ParseDurationMin converts a Russian route duration like "1 ч 5 мин",
// "40 мин" or "1 ч" into whole minutes. The second return is false
// when no duration is present in the text.
func ParseDurationMin(txt string) (int, bool) {
	txt = strings.ReplaceAll(txt, " ", " ")

	if m := hoursMinutesRe.FindStringSubmatch(txt); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins := 0
		if m[2] != "" {
			mins, _ = strconv.Atoi(m[2])
		}
		return h*60 + mins, true
	}

	if m := minutesOnlyRe.FindStringSubmatch(txt); m != nil {
		mins, _ := strconv.Atoi(m[1])
		return mins, true
	}

	return 0, false
}
