package testsupport

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dottedTime   = regexp.MustCompile(`(\d{1,2})\.(\d{2})`)
	fillerWords  = regexp.MustCompile(`\b(remind me to|reminder for|at|on)\b`)
	clockTime    = regexp.MustCompile(`(\d{1,2}):(\d{2})\s?(am|pm)?`)
	relativeTime = regexp.MustCompile(`in (\d+) (seconds?|minutes?|hours?|days?)`)
	spaces       = regexp.MustCompile(`\s+`)
)

// ParseReminder extracts the task and due time from a reminder request such
// as "remind me to call mom at 11.30 pm" or "remind me to stretch in 10
// minutes". Clock times in the past roll over to the next day. ok is false
// when no time can be found.
func ParseReminder(message string, now time.Time) (task string, due time.Time, ok bool) {
	cleaned := strings.ToLower(message)
	cleaned = dottedTime.ReplaceAllString(cleaned, "$1:$2")
	cleaned = fillerWords.ReplaceAllString(cleaned, "")
	cleaned = collapse(cleaned)

	clock := clockTime.FindStringSubmatch(cleaned)
	task = cleaned
	if clock != nil {
		task = strings.Replace(task, clock[0], "", 1)
	}

	switch {
	case relativeTime.MatchString(cleaned):
		m := relativeTime.FindStringSubmatch(cleaned)
		task = strings.Replace(task, m[0], "", 1)
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", time.Time{}, false
		}
		due = now.Add(time.Duration(n) * unitOf(m[2]))

	case strings.Contains(cleaned, "tomorrow"):
		task = strings.Replace(task, "tomorrow", "", 1)
		due = atClock(now.AddDate(0, 0, 1), clock)

	case strings.Contains(cleaned, "next monday"):
		task = strings.Replace(task, "next monday", "", 1)
		days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		due = atClock(now.AddDate(0, 0, days), clock)

	case clock != nil:
		due = atClock(now, clock)
		if due.IsZero() {
			return "", time.Time{}, false
		}
		if due.Before(now) {
			due = due.AddDate(0, 0, 1)
		}

	default:
		return "", time.Time{}, false
	}

	if due.IsZero() {
		return "", time.Time{}, false
	}
	return collapse(task), due, true
}

func unitOf(name string) time.Duration {
	switch strings.TrimSuffix(name, "s") {
	case "second":
		return time.Second
	case "minute":
		return time.Minute
	case "hour":
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// atClock returns day at the given clock match, or 08:00 when clock is nil.
// A clock outside 00:00-23:59 yields the zero time.
func atClock(day time.Time, clock []string) time.Time {
	hour, minute := 8, 0
	if clock != nil {
		hour, _ = strconv.Atoi(clock[1])
		minute, _ = strconv.Atoi(clock[2])
		switch clock[3] {
		case "pm":
			if hour > 12 {
				return time.Time{}
			}
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour > 12 {
				return time.Time{}
			}
			if hour == 12 {
				hour = 0
			}
		}
		if hour > 23 || minute > 59 {
			return time.Time{}
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func collapse(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
