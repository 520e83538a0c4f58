// Package debug traces subprocess timing. Console tracing is opt-in (--debug);
// entries always reach the run log when one is attached.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	enabled bool
	out     io.Writer = os.Stdout
	logger  *logrus.Logger
	entries []Entry
)

type Entry struct {
	Tool     string        `json:"tool"`
	Args     string        `json:"args"`
	Duration time.Duration `json:"duration"`
	Failed   bool          `json:"failed"`
}

// Enable turns on console tracing.
func Enable() {
	mu.Lock()
	enabled = true
	mu.Unlock()
}

// SetOutput redirects console tracing.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// AttachLogger mirrors every traced command into l. Pass nil to detach.
func AttachLogger(l *logrus.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Reset drops collected entries and restores defaults.
func Reset() {
	mu.Lock()
	enabled = false
	out = os.Stdout
	logger = nil
	entries = nil
	mu.Unlock()
}

func LogStart(tool string, args []string) time.Time {
	start := time.Now()

	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		logger.WithFields(logrus.Fields{"tool": tool, "args": strings.Join(args, " ")}).Debug("command start")
	}
	if enabled {
		color.New(color.FgHiBlack).Fprintf(out, "    [DEBUG %s] START: %s %s\n", start.Format("15:04:05.000"), tool, strings.Join(args, " "))
	}
	return start
}

func LogEnd(tool string, args []string, start time.Time, err error, outputLines int) {
	duration := time.Since(start)

	mu.Lock()
	defer mu.Unlock()

	entries = append(entries, Entry{
		Tool:     tool,
		Args:     strings.Join(args, " "),
		Duration: duration,
		Failed:   err != nil,
	})

	if logger != nil {
		fields := logrus.Fields{"tool": tool, "duration": duration.Round(time.Millisecond).String(), "lines": outputLines}
		if err != nil {
			logger.WithFields(fields).WithError(err).Debug("command end")
		} else {
			logger.WithFields(fields).Debug("command end")
		}
	}
	if !enabled {
		return
	}

	status := "OK"
	statusColor := color.New(color.FgGreen)
	if err != nil {
		status = fmt.Sprintf("ERROR: %v", err)
		statusColor = color.New(color.FgRed)
	}
	gray := color.New(color.FgHiBlack)
	gray.Fprintf(out, "    [DEBUG %s] END:   %s ", time.Now().Format("15:04:05.000"), tool)
	statusColor.Fprintf(out, "%s", status)
	gray.Fprintf(out, " (duration: %s, output: %d lines)\n", duration.Round(time.Millisecond), outputLines)
}

// Entries returns a copy of every traced command.
func Entries() []Entry {
	mu.Lock()
	defer mu.Unlock()
	return append([]Entry(nil), entries...)
}

// Summary prints per-command timings when tracing is on.
func Summary() {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || len(entries) == 0 {
		return
	}

	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "═══════════════════════════════════════════════════════")
	cyan.Fprintln(out, "                    DEBUG SUMMARY")
	cyan.Fprintln(out, "═══════════════════════════════════════════════════════")

	var total time.Duration
	for _, e := range entries {
		mark := "✓"
		if e.Failed {
			mark = "✗"
		}
		fmt.Fprintf(out, "  %s %-20s %10s\n", mark, e.Tool, e.Duration.Round(time.Millisecond))
		total += e.Duration
	}
	fmt.Fprintln(out, "───────────────────────────────────────────────────────")
	fmt.Fprintf(out, "  Total tool execution time: %s\n", total.Round(time.Millisecond))
	fmt.Fprintf(out, "  Tools executed: %d\n", len(entries))
	cyan.Fprintln(out, "═══════════════════════════════════════════════════════")
}
