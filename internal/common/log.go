package common

import (
	"fmt"
	"time"
)

// LoggingEnabled controls whether Logf produces output. It defaults to off
// so the engine stays quiet when embedded; the CLI flips it on with -v.
var LoggingEnabled = false

// Logf prints a formatted message if logging is enabled.
func Logf(format string, args ...interface{}) {
	if LoggingEnabled {
		fmt.Printf(format, args...)
	}
}

// formatDuration renders a duration with 2 decimal places in the most
// readable unit (us, ms, or s).
func formatDuration(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)

	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	} else if ms < 0.01 {
		return fmt.Sprintf("%.2f us", ms*1000)
	}
	return fmt.Sprintf("%.2f ms", ms)
}

// LogDuration prints a message with the elapsed time since start.
// The duration is printed first and right-padded so messages line up.
func LogDuration(start time.Time, format string, args ...interface{}) {
	elapsed := time.Since(start)
	msg := fmt.Sprintf(format, args...)
	durStr := fmt.Sprintf("(%s)", formatDuration(elapsed))
	Logf("%-10s%s\n", durStr, msg)
}
