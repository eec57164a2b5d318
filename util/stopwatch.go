package util

import (
	"log/slog"
	"time"

	"github.com/pbnjay/memory"
)

// prevTime is process-wide diagnostic state for LogTimeDiff.
var prevTime time.Time

// LogTimeDiff logs the current time and, from the second call on, the
// elapsed seconds since the previous call. Diagnostic only.
func LogTimeDiff() {
	now := time.Now()
	if prevTime.IsZero() {
		slog.Info("time", "now", now.Format("2006/01/02 15:04:05.000000"))
	} else {
		slog.Info("time",
			"now", now.Format("2006/01/02 15:04:05.000000"),
			"diff", now.Sub(prevTime).Seconds())
	}
	prevTime = now
}

// LogSystemMemory records how much physical memory the host has, as a
// hint for choosing a flush threshold on large corpora.
func LogSystemMemory() {
	slog.Debug("system memory", "total_bytes", memory.TotalMemory())
}
