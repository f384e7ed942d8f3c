// Package intent – remind.go parses the reminder command grammar.
// Two surface forms are supported, in English and Russian:
//
//	remind in 10 minutes buy milk      напомни через 10 минут купить молоко
//	remind tomorrow at 09:00 call bank напомни завтра в 09:00 позвонить в банк
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Reminder is a parsed reminder command.
type Reminder struct {
	// FireAt is the absolute time the reminder should fire.
	FireAt time.Time

	// Body is the text delivered when it fires.
	Body string
}

var (
	relativeRe = regexp.MustCompile(`(?i)^(?:remind|напомни)\s+(?:in|через)\s+(-?\d+)\s*(\S+)\s+(.+)$`)
	tomorrowRe = regexp.MustCompile(`(?i)^(?:remind|напомни)\s+(?:tomorrow\s+at|завтра\s+в)\s+(\d{1,2}):(\d{2})\s+(.+)$`)
)

// ParseReminder parses a reminder command relative to now. Returns false for
// anything that does not match the grammar — zero or negative amounts, empty
// bodies, malformed clock times, unknown units — so the caller can reply
// with a usage hint instead of silently ignoring the message.
func ParseReminder(text string, now time.Time) (Reminder, bool) {
	t := strings.TrimSpace(text)

	if m := relativeRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Reminder{}, false
		}
		unit, ok := unitDuration(m[2])
		if !ok {
			return Reminder{}, false
		}
		body := strings.TrimSpace(m[3])
		if body == "" {
			return Reminder{}, false
		}
		return Reminder{FireAt: now.Add(time.Duration(n) * unit), Body: body}, true
	}

	if m := tomorrowRe.FindStringSubmatch(t); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if hh > 23 || mm > 59 {
			return Reminder{}, false
		}
		body := strings.TrimSpace(m[3])
		if body == "" {
			return Reminder{}, false
		}
		tomorrow := now.AddDate(0, 0, 1)
		fireAt := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
			hh, mm, 0, 0, now.Location())
		return Reminder{FireAt: fireAt, Body: body}, true
	}

	return Reminder{}, false
}

// unitDuration resolves a unit token by locale-root prefix, so "min",
// "minutes", "мин" and "минуты" all mean the same thing.
func unitDuration(token string) (time.Duration, bool) {
	lower := strings.ToLower(token)
	switch {
	case strings.HasPrefix(lower, "sec"), strings.HasPrefix(lower, "сек"):
		return time.Second, true
	case strings.HasPrefix(lower, "min"), strings.HasPrefix(lower, "мин"):
		return time.Minute, true
	case strings.HasPrefix(lower, "hour"), strings.HasPrefix(lower, "hr"),
		strings.HasPrefix(lower, "час"):
		return time.Hour, true
	}
	return 0, false
}
