package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

const (
	timestampFormat = "01-02 15:04:05.000"
	lineFormat      = "[%lvl%]   [%time%]   -   %msg%\r\n"
)

// levels is indexed by the log_level config value.
var levels = [...]logrus.Level{
	logrus.DebugLevel,
	logrus.InfoLevel,
	logrus.WarnLevel,
	logrus.ErrorLevel,
}

var std = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	return &logrus.Logger{
		Out:   out,
		Level: logrus.InfoLevel,
		Hooks: make(logrus.LevelHooks),
		Formatter: &easy.Formatter{
			TimestampFormat: timestampFormat,
			LogFormat:       lineFormat,
		},
	}
}

// SetLevel takes log_level: 0 debug, 1 info, 2 warn, 3 error. Other values mean info.
func SetLevel(lvl int) {
	level := logrus.InfoLevel
	if lvl >= 0 && lvl < len(levels) {
		level = levels[lvl]
	}
	std.Infof("log level set to %v.", strings.ToUpper(level.String()))
	std.SetLevel(level)
}

// SetOutput redirects every log line, tests use it to keep output quiet.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func Debug(args ...interface{}) {
	std.Debug(args...)
}

func Debugf(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

func Info(args ...interface{}) {
	std.Info(args...)
}

func Infof(format string, args ...interface{}) {
	std.Infof(format, args...)
}

func Warn(args ...interface{}) {
	std.Warn(args...)
}

func Warnf(format string, args ...interface{}) {
	std.Warnf(format, args...)
}

func Error(args ...interface{}) {
	std.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

func Fatal(args ...interface{}) {
	std.Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	std.Fatalf(format, args...)
}
