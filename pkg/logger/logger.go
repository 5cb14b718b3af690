package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Leveled logger shared by the API server, the review service and the CLI.
// Call sites use the package-level helpers; the backing logrus instance is
// configured once through Init.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu    sync.RWMutex
	log   = newLogrus()
	level = LevelInfo
)

func newLogrus() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
		log.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		level = LevelWarn
		log.SetLevel(logrus.WarnLevel)
	case "error":
		level = LevelError
		log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		level = LevelFatal
		log.SetLevel(logrus.FatalLevel)
	default:
		level = LevelInfo
		log.SetLevel(logrus.InfoLevel)
	}
}

// WithField returns an entry carrying a structured field, for call sites that
// want more than a formatted message.
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

func Debugf(format string, v ...interface{}) { log.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { log.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { log.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { log.Errorf(format, v...) }

// exit is replaced in tests.
var exit = os.Exit

// Fatalf logs at fatal level, which every configured level lets through, and
// exits with status 1.
func Fatalf(format string, v ...interface{}) {
	log.Logf(logrus.FatalLevel, format, v...)
	exit(1)
}

// Println maps to Info.
func Println(v ...interface{}) {
	log.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
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
