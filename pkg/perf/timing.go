// Package perf appends operation timings to a log file when
// MEDIAPANEL_PERF=1 is set in the environment.
package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	enabled  = os.Getenv("MEDIAPANEL_PERF") == "1"
	logFile  *os.File
	logMutex sync.Mutex
	initOnce sync.Once
)

// LogPath is where timings are written.
func LogPath() string {
	return filepath.Join(os.TempDir(), "mediapanel-perf.log")
}

func open() {
	initOnce.Do(func() {
		var err error
		logFile, err = os.OpenFile(LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			enabled = false
		}
	})
}

// Timer tracks elapsed time for a named operation
type Timer struct {
	name  string
	start time.Time
}

// Start begins timing an operation
func Start(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop ends timing and logs the result
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if !enabled {
		return elapsed
	}
	open()
	if logFile != nil {
		logMutex.Lock()
		fmt.Fprintf(logFile, "%s: %s: %v\n", time.Now().Format("15:04:05.000"), t.name, elapsed)
		logMutex.Unlock()
	}
	return elapsed
}

// IsEnabled returns whether performance logging is enabled
func IsEnabled() bool {
	return enabled
}
