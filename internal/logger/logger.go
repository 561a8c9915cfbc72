package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	NONE
)

var (
	level     atomic.Int32
	stdLogger = log.New(os.Stderr, "[shopkeywords] ", log.LstdFlags)
)

func init() {
	level.Store(int32(INFO))
}

// ParseLevel maps a config/flag value to a Level. Unknown values mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "none", "off":
		return NONE
	default:
		return INFO
	}
}

func Init(levelStr string) {
	SetLevel(ParseLevel(levelStr))
}

func SetLevel(l Level) { level.Store(int32(l)) }

func GetLevel() Level { return Level(level.Load()) }

func SetOutput(w io.Writer) { stdLogger.SetOutput(w) }

func enabled(l Level) bool { return GetLevel() <= l }

func Debug(msg string, args ...any) {
	if enabled(DEBUG) {
		stdLogger.Printf("[DEBUG] "+msg, args...)
	}
}

func Info(msg string, args ...any) {
	if enabled(INFO) {
		stdLogger.Printf("[INFO] "+msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if enabled(WARN) {
		stdLogger.Printf("[WARN] "+msg, args...)
	}
}

func Error(msg string, args ...any) {
	if enabled(ERROR) {
		stdLogger.Printf("[ERROR] "+msg, args...)
	}
}
