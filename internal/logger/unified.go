package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogType tells the output router which stream an entry belongs to
type LogType string

const (
	UserLog LogType = "user"
	OpLog   LogType = "op"
)

// Entry fields consumed by the router and hidden from formatted output
const (
	fieldLogType = "log_type"
	fieldEmoji   = "emoji"
)

// UnifiedLogger owns the one logrus logger shared by User and Op. The logger
// itself writes nowhere; an OutputRouterHook does the writing.
type UnifiedLogger struct {
	mu     sync.RWMutex
	logger *logrus.Logger
}

var (
	unifiedLog *UnifiedLogger
	once       sync.Once
)

// GetLogger returns the process-wide logger, creating it on first use
func GetLogger() *UnifiedLogger {
	once.Do(func() {
		l := logrus.New()
		l.SetOutput(io.Discard)
		unifiedLog = &UnifiedLogger{logger: l}
		unifiedLog.install(logrus.InfoLevel, NewOutputRouterHook())
	})
	return unifiedLog
}

// Logger returns the underlying logrus logger
func (l *UnifiedLogger) Logger() *logrus.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger
}

// install replaces the level and the router hook in one step
func (l *UnifiedLogger) install(level logrus.Level, hook *OutputRouterHook) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.SetLevel(level)
	l.logger.ReplaceHooks(make(logrus.LevelHooks))
	l.logger.AddHook(hook)
}
