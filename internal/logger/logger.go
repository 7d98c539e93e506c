package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	User *UserLogger // Clean messages for users (stdout) with emojis
	Op   *OpLogger   // Detailed operational logs (stderr) without emojis
)

func init() {
	l := GetLogger().Logger()
	User = &UserLogger{logger: l}
	Op = &OpLogger{logger: l}
}

type UserLogger struct {
	logger *logrus.Logger
}

type OpLogger struct {
	logger *logrus.Logger
}

func (u *UserLogger) entry(emoji string) *logrus.Entry {
	fields := logrus.Fields{fieldLogType: string(UserLog)}
	if emoji != "" {
		fields[fieldEmoji] = emoji
	}
	return u.logger.WithFields(fields)
}

func (u *UserLogger) Info(msg string) {
	u.entry("").Info(msg)
}

func (u *UserLogger) Infof(format string, args ...interface{}) {
	u.entry("").Infof(format, args...)
}

func (u *UserLogger) Errorf(format string, args ...interface{}) {
	u.entry("❌").Errorf(format, args...)
}

func (u *UserLogger) Warn(msg string) {
	u.entry("⚠️").Warn(msg)
}

func (u *UserLogger) Warnf(format string, args ...interface{}) {
	u.entry("⚠️").Warnf(format, args...)
}

// Startingf marks the beginning of a task or phase
func (u *UserLogger) Startingf(format string, args ...interface{}) {
	u.entry("🚀").Infof(format, args...)
}

func (u *UserLogger) Successf(format string, args ...interface{}) {
	u.entry("✅").Infof(format, args...)
}

// Skipf reports a task that was left out of the run
func (u *UserLogger) Skipf(format string, args ...interface{}) {
	u.entry("⏭️").Infof(format, args...)
}

// Privilegedf announces work that may prompt for elevated credentials
func (u *UserLogger) Privilegedf(format string, args ...interface{}) {
	u.entry("🔐").Infof(format, args...)
}

// Blockedf reports tasks whose dependencies can no longer be satisfied
func (u *UserLogger) Blockedf(format string, args ...interface{}) {
	u.entry("⛔").Warnf(format, args...)
}

func (o *OpLogger) Debug(msg string) {
	o.WithFields(nil).Debug(msg)
}

// WithFields returns an operational entry carrying fields
func (o *OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	data := make(logrus.Fields, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data[fieldLogType] = string(OpLog)
	return o.logger.WithFields(data)
}

// TaskWriter returns a writer that logs every line written to it as an
// operational entry tagged with the task id. Callers must Close it.
func (o *OpLogger) TaskWriter(taskID string, level logrus.Level) *io.PipeWriter {
	return o.WithFields(map[string]interface{}{"task": taskID}).WriterLevel(level)
}

// CLIFormatter provides clean output for CLI applications
type CLIFormatter struct {
	DisableTimestamp bool
	DisableLevel     bool
	DisableColors    bool
}

var levelColors = map[logrus.Level]string{
	logrus.ErrorLevel: "\033[31m",
	logrus.WarnLevel:  "\033[33m",
	logrus.InfoLevel:  "\033[36m",
	logrus.DebugLevel: "\033[37m",
}

func (f *CLIFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	// User-facing lines are the bare message
	if f.DisableLevel && f.DisableTimestamp {
		b.WriteString(entry.Message)
		b.WriteByte('\n')
		return b.Bytes(), nil
	}

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("15:04:05"))
		b.WriteByte(' ')
	}

	if !f.DisableLevel {
		level := strings.ToUpper(entry.Level.String())
		if color, ok := levelColors[entry.Level]; ok && !f.DisableColors {
			level = color + level + "\033[0m"
		}
		b.WriteString(level)
		b.WriteString(": ")
	}

	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == fieldLogType || k == fieldEmoji {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Options controls how Setup wires the logger
type Options struct {
	Verbose    bool
	JSON       bool
	Quiet      bool
	UserWriter io.Writer
	OpWriter   io.Writer
}

// Setup configures the global logger for the CLI
func Setup(verbose bool, jsonLogs bool, quiet bool) {
	SetupWithOptions(Options{Verbose: verbose, JSON: jsonLogs, Quiet: quiet})
}

// SetupWithOptions configures the global logger. Environment variables
// ENVUP_LOG_MODE and ENVUP_LOG_FORMAT override the flags.
func SetupWithOptions(opts Options) {
	switch os.Getenv("ENVUP_LOG_MODE") {
	case "quiet":
		opts.Quiet, opts.Verbose = true, false
	case "verbose", "debug":
		opts.Verbose, opts.Quiet = true, false
	}

	switch os.Getenv("ENVUP_LOG_FORMAT") {
	case "json":
		opts.JSON = true
	case "text":
		opts.JSON = false
	}

	level := logrus.InfoLevel
	switch {
	case opts.Quiet:
		level = logrus.ErrorLevel
	case opts.Verbose:
		level = logrus.DebugLevel
	}

	hook := NewOutputRouterHook()
	if opts.UserWriter != nil {
		hook.User.Writer = opts.UserWriter
	}
	if opts.OpWriter != nil {
		hook.Op.Writer = opts.OpWriter
	}

	if opts.JSON {
		hook.User.Formatter = &logrus.JSONFormatter{}
		hook.Op.Formatter = &logrus.JSONFormatter{}
	} else {
		hook.Op.Formatter = &CLIFormatter{
			DisableTimestamp: !opts.Verbose,
			DisableColors:    !isTerminal(hook.Op.Writer),
		}
	}

	GetLogger().install(level, hook)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
