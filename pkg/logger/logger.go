package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled logger shared by the todo service and the authorizer.
// Package-level helpers log without a component; New returns a named
// logger whose lines carry the component and optional key/value fields.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
}

func parseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func header(l Level, component string) string {
	h := fmt.Sprintf("%s [%s] ", time.Now().UTC().Format(time.RFC3339), strings.ToUpper(l.String()))
	if component != "" {
		h += "(" + component + ") "
	}
	return h
}

func output(l Level, component, msg string) {
	if !shouldLog(l) {
		return
	}
	logger.Print(header(l, component) + msg)
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, "", fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { output(LevelInfo, "", fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { output(LevelWarn, "", fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { output(LevelError, "", fmt.Sprintf(format, v...)) }

// Fatalf always logs and exits the process.
func Fatalf(format string, v ...interface{}) {
	logger.Print(header(LevelFatal, "") + fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Logger is a component-scoped logger, e.g. New("auth").
type Logger struct {
	component string
}

// New returns a logger that tags every line with the given component name.
func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LevelError, msg, kv) }

func (l *Logger) log(lvl Level, msg string, kv []interface{}) {
	if !shouldLog(lvl) {
		return
	}
	output(lvl, l.component, msg+formatFields(kv))
}

// formatFields renders alternating key/value pairs as " k=v". A trailing key
// without a value is rendered with the value "(missing)".
func formatFields(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%v=", kv[i])
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v", kv[i+1])
		} else {
			b.WriteString("(missing)")
		}
	}
	return b.String()
}
