package videocat

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseISODuration converts an ISO-8601 duration as returned by the video
// catalog (for example "PT1H2M30S" or "P1DT4H") into whole seconds. Lessons
// only ever store seconds, so normalisation happens at this boundary.
func ParseISODuration(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if !strings.HasPrefix(trimmed, "P") {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	rest := trimmed[1:]
	datePart := rest
	timePart := ""
	if idx := strings.Index(rest, "T"); idx >= 0 {
		datePart = rest[:idx]
		timePart = rest[idx+1:]
	}

	total := 0
	var err error
	if total, err = accumulate(total, datePart, map[byte]int{'D': 86400, 'W': 604800}); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	if total, err = accumulate(total, timePart, map[byte]int{'H': 3600, 'M': 60, 'S': 1}); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}

	return total, nil
}

func accumulate(total int, part string, units map[byte]int) (int, error) {
	digits := strings.Builder{}
	for i := 0; i < len(part); i++ {
		ch := part[i]
		if ch >= '0' && ch <= '9' {
			digits.WriteByte(ch)
			continue
		}

		unit, ok := units[ch]
		if !ok || digits.Len() == 0 {
			return 0, fmt.Errorf("unexpected %q", string(ch))
		}
		amount, err := strconv.Atoi(digits.String())
		if err != nil {
			return 0, err
		}
		total += amount * unit
		digits.Reset()
	}
	if digits.Len() != 0 {
		return 0, fmt.Errorf("trailing digits without unit")
	}
	return total, nil
}
