// Package recency parses the site's Russian "last active" labels into
// absolute timestamps and decides whether a candidate is fresh enough
// to open.
package recency

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Genitive month names as the site renders them.
var ruMonths = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var (
	// "15 минут назад", "час назад", "3 дня назад", "сутки назад".
	relRe = regexp.MustCompile(`(?:(\d+)\s*)?(минут(?:у|а|ы)?|час(?:а|ов)?|д(?:ень|ня|ней)|сут(?:ки|ок))\s*назад`)

	timeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

	// "14 февраля 2025 в 09:30", "3 марта в 8:00", "7 июня".
	absRe = regexp.MustCompile(`(\d{1,2})\s+([а-я]+)(?:\s+(\d{4}))?(?:\s+в\s+(\d{1,2}):(\d{2}))?`)

	labelRe = regexp.MustCompile(`(?i)был[а]?\s+на\s+сайте[:\s]+([^•\n\r]+)`)

	// Label without a colon or with odd spacing.
	labelLooseRe = regexp.MustCompile(`(?i)(?:был[а]?\s+на\s+сайте)\s*(сейчас|сегодня|вчера|[\d\s]+(?:минут|час|дн)[^•\n\r]*)`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// ParseLastActive converts a raw "last active" phrase into an absolute
// timestamp in now's location. The second return is false when the
// text cannot be parsed confidently; such candidates are treated as
// not recent.
func ParseLastActive(raw string, now time.Time) (time.Time, bool) {
	text := normalize(raw)
	if text == "" {
		return time.Time{}, false
	}

	if strings.Contains(text, "сейчас") {
		return now, true
	}

	if strings.Contains(text, "сегодня") {
		if h, m, ok := clockIn(text); ok {
			return atClock(now, h, m), true
		}
		// No time given: "now" guarantees it counts under any cutoff.
		return now, true
	}

	if strings.Contains(text, "вчера") {
		base := now.AddDate(0, 0, -1)
		if h, m, ok := clockIn(text); ok {
			return atClock(base, h, m), true
		}
		return atClock(base, 12, 0), true
	}

	if m := relRe.FindStringSubmatch(text); m != nil {
		n := 1
		if m[1] != "" {
			n, _ = strconv.Atoi(m[1])
		}
		unit := m[2]
		switch {
		case strings.HasPrefix(unit, "минут"):
			return now.Add(-time.Duration(n) * time.Minute), true
		case strings.HasPrefix(unit, "час"):
			return now.Add(-time.Duration(n) * time.Hour), true
		case strings.HasPrefix(unit, "д"), strings.HasPrefix(unit, "сут"):
			return now.AddDate(0, 0, -n), true
		}
	}

	if m := absRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		mon, ok := ruMonths[m[2]]
		if !ok {
			return time.Time{}, false
		}
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		hour, minute := 12, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		ts := time.Date(year, mon, day, hour, minute, 0, 0, now.Location())
		// Reject impossible dates that time.Date silently rolled over.
		if ts.Day() != day || ts.Month() != mon {
			return time.Time{}, false
		}
		return ts, true
	}

	return time.Time{}, false
}

// IsRecent reports whether ts falls within the cutoff window ending at
// now. A zero cutoff admits only "active right now".
func IsRecent(ts, now time.Time, cutoffHours int) bool {
	cutoff := now.Add(-time.Duration(cutoffHours) * time.Hour)
	return !ts.Before(cutoff)
}

// SliceLastActive extracts the "Был(а) на сайте: ..." value out of a
// longer card text blob. Returns "" when the label is absent.
func SliceLastActive(blob string) string {
	t := strings.TrimSpace(strings.ReplaceAll(blob, " ", " "))
	if t == "" {
		return ""
	}

	if m := labelRe.FindStringSubmatch(t); m != nil {
		return "Был(а) на сайте: " + tidyValue(m[1])
	}
	if m := labelLooseRe.FindStringSubmatch(t); m != nil {
		return "Был(а) на сайте: " + tidyValue(m[1])
	}
	return ""
}

func tidyValue(v string) string {
	v = spaceRe.ReplaceAllString(v, " ")
	return strings.Trim(v, " .,:;")
}

func normalize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = strings.ReplaceAll(text, " ", " ")
	return strings.ReplaceAll(text, "ё", "е")
}

func clockIn(text string) (hour, minute int, ok bool) {
	m := timeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func atClock(base time.Time, hour, minute int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
}
