package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// GlobalLogger is shared by every package. Init replaces it once flags are parsed.
var GlobalLogger = New(false, false, true)

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconVerbose = "…"
	IconDebug   = "»"
)

// Logger writes diagnostics to stderr. Stdout is reserved for the changelog.
type Logger struct {
	verbose      bool
	debug        bool
	colors       bool
	output       io.Writer
	verboseColor *color.Color
	errorColor   *color.Color
	warnColor    *color.Color
	successColor *color.Color
	debugColor   *color.Color
	hashColor    *color.Color
	dateColor    *color.Color
	mutex        sync.Mutex
}

// New creates a configured logger instance
func New(verbose bool, debug bool, useColors bool) *Logger {
	if noColor := os.Getenv("NO_COLOR") != ""; noColor {
		useColors = false
	}

	l := &Logger{
		verbose:      verbose || debug,
		debug:        debug,
		colors:       useColors && isTerminal(os.Stderr),
		output:       os.Stderr,
		verboseColor: color.New(color.FgCyan),
		errorColor:   color.New(color.FgRed, color.Bold),
		warnColor:    color.New(color.FgYellow, color.Bold),
		successColor: color.New(color.FgGreen, color.Bold),
		debugColor:   color.New(color.Faint, color.FgBlue),
		hashColor:    color.New(color.FgYellow),
		dateColor:    color.New(color.FgHiBlue),
	}
	return l
}

// Init replaces GlobalLogger.
func Init(verbose, debug, useColors bool) {
	GlobalLogger = New(verbose, debug, useColors)
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && (fi.Mode()&os.ModeCharDevice) != 0
}

// SetOutput changes the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.output = w

	// Only check terminal if colors were enabled
	if l.colors {
		l.colors = isTerminal(w)
	}
}

// Debugf prints formatted debug message when debug enabled
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.debug {
		return
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	msg := fmt.Sprintf(format, v...)
	timestamp := time.Now().Format("15:04:05.000")
	if l.colors {
		l.debugColor.Fprintf(l.output, "%s %s [DEBUG] %s\n", IconDebug, timestamp, msg)
	} else {
		fmt.Fprintf(l.output, "%s [DEBUG] %s\n", timestamp, msg)
	}
}

// Verbosef prints formatted verbose message when verbose enabled
func (l *Logger) Verbosef(format string, v ...interface{}) {
	if !l.verbose {
		return
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	msg := fmt.Sprintf(format, v...)
	if l.colors {
		l.verboseColor.Fprintf(l.output, "%s [INFO] %s\n", IconVerbose, msg)
	} else {
		fmt.Fprintf(l.output, "%s [INFO] %s\n", IconVerbose, msg)
	}
}

// Errorf prints error message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	msg := fmt.Sprintf(format, v...)
	if l.colors {
		l.errorColor.Fprintf(l.output, "%s [ERROR] %s\n", IconError, msg)
	} else {
		fmt.Fprintf(l.output, "[ERROR] %s\n", msg)
	}
}

// Successf prints success message when verbose enabled
func (l *Logger) Successf(format string, v ...interface{}) {
	if !l.verbose {
		return
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	msg := fmt.Sprintf(format, v...)
	if l.colors {
		l.successColor.Fprintf(l.output, "%s [SUCCESS] %s\n", IconSuccess, msg)
	} else {
		fmt.Fprintf(l.output, "%s [SUCCESS] %s\n", IconSuccess, msg)
	}
}

// Warnf prints warning message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	msg := fmt.Sprintf(format, v...)
	if l.colors {
		l.warnColor.Fprintf(l.output, "%s [WARN] %s\n", IconWarning, msg)
	} else {
		fmt.Fprintf(l.output, "%s [WARN] %s\n", IconWarning, msg)
	}
}

// PrintCommit lists a fetched commit as "<short hash> <date> <subject>" in verbose mode.
func (l *Logger) PrintCommit(hash string, date time.Time, subject string) {
	if !l.verbose {
		return
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if len(hash) > 8 {
		hash = hash[:8]
	}
	day := date.Format("2006-01-02")

	if l.colors {
		l.hashColor.Fprint(l.output, hash)
		fmt.Fprint(l.output, " ")
		l.dateColor.Fprint(l.output, day)
		fmt.Fprintf(l.output, " %s\n", subject)
	} else {
		fmt.Fprintf(l.output, "%s %s %s\n", hash, day, subject)
	}
}

// Verbose reports whether verbose output is enabled.
func (l *Logger) Verbose() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.verbose
}
