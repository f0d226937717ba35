package utils

import (
	"fmt"
	"strconv"
	"time"
)

// FormatDuration renders a second count as H:MM:SS. Hours are unbounded,
// minutes and seconds are zero-padded to two digits.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

// FormatLocalTime renders a stored UTC timestamp in the host's local
// zone, 12-hour clock.
func FormatLocalTime(t time.Time) string {
	return t.Local().Format("Jan 02, 2006 03:04 PM")
}

func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if n < 0 {
		str = str[1:] // Remove minus sign for processing
	}

	var result []byte
	for i := len(str) - 1; i >= 0; i-- {
		if (len(str)-i-1)%3 == 0 && i != len(str)-1 {
			result = append([]byte{','}, result...)
		}
		result = append([]byte{str[i]}, result...)
	}

	if n < 0 {
		return "-" + string(result)
	}
	return string(result)
}
