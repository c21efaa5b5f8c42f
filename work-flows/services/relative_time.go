package services

import (
	"fmt"
	"math"
	"time"
)

// Translator looks up a UI string by key.
type Translator interface {
	Translate(key string) string
}

const AbsoluteDateLayout = "Jan 2, 2006"

// FormatRelativeTime renders how long ago t was, relative to now:
// under a minute, minutes, hours (rounded, at most 23), days, then the calendar date
// once a week has passed. Timestamps in the future read as "just now".
func FormatRelativeTime(t, now time.Time, tr Translator) string {
	if t.IsZero() {
		return ""
	}

	elapsed := now.Sub(t)
	if elapsed < time.Minute {
		return tr.Translate("justNow")
	}

	if elapsed < time.Hour {
		mins := int(elapsed / time.Minute)
		return plural(tr, mins, "minuteAgo", "minutesAgo")
	}

	if elapsed < 24*time.Hour {
		hours := min(int(math.Round(elapsed.Hours())), 23)
		return plural(tr, hours, "hourAgo", "hoursAgo")
	}

	if elapsed < 7*24*time.Hour {
		days := int(elapsed / (24 * time.Hour))
		return plural(tr, days, "dayAgo", "daysAgo")
	}

	return t.In(now.Location()).Format(AbsoluteDateLayout)
}

func plural(tr Translator, n int, singular, pluralKey string) string {
	key := singular
	if n > 1 {
		key = pluralKey
	}
	return fmt.Sprintf("%d %s", n, tr.Translate(key))
}
