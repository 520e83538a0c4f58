// Package console prints the tagged status lines the scan emits ([INFO],
// [SUCCESS], [WARN], [ERROR]) and mirrors them into the per-target run log.
package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type Console struct {
	mu  sync.Mutex
	w   io.Writer
	log *logrus.Logger
}

func New(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Discard returns a console that prints nothing.
func Discard() *Console { return New(io.Discard) }

func (c *Console) Writer() io.Writer { return c.w }

// AttachLog mirrors every printed line into l. Pass nil to detach.
func (c *Console) AttachLog(l *logrus.Logger) {
	c.mu.Lock()
	c.log = l
	c.mu.Unlock()
}

func (c *Console) Info(format string, args ...interface{}) {
	c.print(color.New(color.FgCyan), "[INFO]", logrus.InfoLevel, format, args...)
}

func (c *Console) Success(format string, args ...interface{}) {
	c.print(color.New(color.FgGreen), "[SUCCESS]", logrus.InfoLevel, format, args...)
}

func (c *Console) Warn(format string, args ...interface{}) {
	c.print(color.New(color.FgYellow), "[WARN]", logrus.WarnLevel, format, args...)
}

func (c *Console) Error(format string, args ...interface{}) {
	c.print(color.New(color.FgRed), "[ERROR]", logrus.ErrorLevel, format, args...)
}

// Debug writes only to the run log.
func (c *Console) Debug(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}

func (c *Console) print(tagColor *color.Color, tag string, level logrus.Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	c.mu.Lock()
	defer c.mu.Unlock()
	tagColor.Fprint(c.w, tag)
	fmt.Fprintf(c.w, " %s\n", msg)
	if c.log != nil {
		c.log.Log(level, msg)
	}
}

// OpenLog creates (or appends to) a run log at path. The returned func closes it.
func OpenLog(path string) (*logrus.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})
	// command traces are logged at debug level
	l.SetLevel(logrus.DebugLevel)
	return l, f.Close, nil
}
