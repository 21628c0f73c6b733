package domain

import (
	"fmt"
	"time"
)

// FormatDuration converts seconds to "MMm SSs"
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
}

// FormatGameTime converts a unix-millisecond timestamp to a local
// "2006-01-02 15:04" string
func FormatGameTime(millis int64) string {
	return time.UnixMilli(millis).Format("2006-01-02 15:04")
}
