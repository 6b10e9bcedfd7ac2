// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/stereoshow/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// output serializes lines from all loggers derived from one console.
// Batch workers log concurrently.
type output struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *output) println(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.w, line)
}

// ConsoleLogger logs messages to stderr with color support. Stdout is left
// to command results.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	out       *output
}

// NewConsole creates a new console logger with the specified level.
// Color output is automatically enabled when stderr is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stderr.Fd()
	return &ConsoleLogger{
		level: level,
		color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		out:   &output{w: os.Stderr},
	}
}

// NewConsoleWriter creates a console logger writing uncolored lines to w.
func NewConsoleWriter(level ports.LogLevel, w io.Writer) *ConsoleLogger {
	return &ConsoleLogger{
		level: level,
		out:   &output{w: w},
	}
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a logger that prefixes messages with the component
// name and shares this logger's output.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	return &ConsoleLogger{
		level:     l.level,
		component: component,
		color:     l.color,
		out:       l.out,
	}
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.out.println(l.format(level, l10n.F(msg, args...)))
}

// format builds one output line from a translated message.
func (l *ConsoleLogger) format(level ports.LogLevel, text string) string {
	if !l.color {
		line := text
		if l.component != "" {
			line = fmt.Sprintf("[%s] %s", l.component, text)
		}
		switch level {
		case ports.LevelWarn:
			return "WARN  " + line
		case ports.LevelError:
			return "ERROR " + line
		}
		return line
	}

	line := text
	if l.component != "" {
		line = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, text)
	}
	switch level {
	case ports.LevelDebug:
		return colorGray + line + colorReset
	case ports.LevelWarn:
		return colorYellow + line + colorReset
	case ports.LevelError:
		return colorRed + line + colorReset
	}
	return line
}
