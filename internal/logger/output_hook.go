package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Stream is one output destination and the formatter used for it
type Stream struct {
	Writer    io.Writer
	Formatter logrus.Formatter
}

// OutputRouterHook sends user entries to the User stream, prefixed with
// their emoji, and everything else to the Op stream
type OutputRouterHook struct {
	User Stream
	Op   Stream

	// logrus fires hooks outside its own lock and tasks log concurrently
	mu sync.Mutex
}

// NewOutputRouterHook routes user messages to stdout and operational logs to stderr
func NewOutputRouterHook() *OutputRouterHook {
	return &OutputRouterHook{
		User: Stream{
			Writer:    os.Stdout,
			Formatter: &CLIFormatter{DisableTimestamp: true, DisableLevel: true},
		},
		Op: Stream{
			Writer:    os.Stderr,
			Formatter: &CLIFormatter{},
		},
	}
}

// Levels returns every level; filtering happens on the logger
func (h *OutputRouterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire formats the entry for its stream and writes it
func (h *OutputRouterHook) Fire(entry *logrus.Entry) error {
	stream := h.Op
	if logType, _ := entry.Data[fieldLogType].(string); logType == string(UserLog) {
		stream = h.User
		if emoji, _ := entry.Data[fieldEmoji].(string); emoji != "" {
			prefixed := *entry
			prefixed.Message = emoji + " " + entry.Message
			entry = &prefixed
		}
	}

	line, err := stream.Formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = stream.Writer.Write(line)
	return err
}
