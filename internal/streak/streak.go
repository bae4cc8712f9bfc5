// Package streak derives consecutive-day learning streaks from lesson
// completion timestamps.
package streak

import (
	"sort"
	"time"
)

// Current returns the number of consecutive calendar days with at least one
// completion, ending today or yesterday. Multiple completions on the same
// day count as a single streak day; a gap of more than one day between the
// newest completion and today, or anywhere inside the run, ends the streak.
func Current(completions []time.Time, now time.Time) int {
	days := uniqueDaysDescending(completions)
	if len(days) == 0 {
		return 0
	}

	today := midnight(now)
	if daysBetween(today, days[0]) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// uniqueDaysDescending collapses timestamps to their UTC calendar day and
// sorts newest first. Duplicate same-day entries never advance or reset the
// streak, so they are dropped here.
func uniqueDaysDescending(completions []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(completions))
	days := make([]time.Time, 0, len(completions))
	for _, completion := range completions {
		day := midnight(completion)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

func midnight(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween assumes both arguments are midnights with later first.
func daysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
