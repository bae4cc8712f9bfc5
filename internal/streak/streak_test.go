package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 15, 18, 30, 0, 0, time.UTC)

func daysAgo(n int, hour int) time.Time {
	return now.AddDate(0, 0, -n).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour)
}

func TestCurrentNoCompletions(t *testing.T) {
	require.Equal(t, 0, Current(nil, now))
	require.Equal(t, 0, Current([]time.Time{}, now))
}

func TestCurrentThreeConsecutiveDays(t *testing.T) {
	completions := []time.Time{daysAgo(0, 9), daysAgo(1, 20), daysAgo(2, 7)}
	require.Equal(t, 3, Current(completions, now))
}

func TestCurrentStartsYesterday(t *testing.T) {
	completions := []time.Time{daysAgo(1, 10), daysAgo(2, 10)}
	require.Equal(t, 2, Current(completions, now))
}

func TestCurrentBrokenByMissedDay(t *testing.T) {
	// Only a completion two days ago: gap at yesterday and today.
	completions := []time.Time{daysAgo(2, 12)}
	require.Equal(t, 0, Current(completions, now))
}

func TestCurrentGapInsideRunEndsScan(t *testing.T) {
	completions := []time.Time{daysAgo(0, 8), daysAgo(1, 8), daysAgo(3, 8), daysAgo(4, 8)}
	require.Equal(t, 2, Current(completions, now))
}

func TestCurrentSameDayDuplicatesCountOnce(t *testing.T) {
	completions := []time.Time{daysAgo(0, 8), daysAgo(0, 14), daysAgo(0, 22), daysAgo(1, 9)}
	require.Equal(t, 2, Current(completions, now))
}

func TestCurrentDuplicatesMidRunDoNotReset(t *testing.T) {
	completions := []time.Time{
		daysAgo(0, 9),
		daysAgo(1, 9), daysAgo(1, 13), daysAgo(1, 21),
		daysAgo(2, 6),
	}
	require.Equal(t, 3, Current(completions, now))
}

func TestCurrentUnorderedInputHandled(t *testing.T) {
	completions := []time.Time{daysAgo(2, 9), daysAgo(0, 9), daysAgo(1, 9)}
	require.Equal(t, 3, Current(completions, now))
}
