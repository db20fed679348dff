package utils

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level         string `json:"level" yaml:"level"`
	Format        string `json:"format" yaml:"format"`
	Output        string `json:"output" yaml:"output"`
	FileLocation  string `json:"file_location" yaml:"file_location"`
	MaxSize       int    `json:"max_size" yaml:"max_size"`
	MaxBackups    int    `json:"max_backups" yaml:"max_backups"`
	MaxAge        int    `json:"max_age" yaml:"max_age"`
	Compress      bool   `json:"compress" yaml:"compress"`
	EnableConsole bool   `json:"enable_console" yaml:"enable_console"`
}

type Logger struct {
	*logrus.Logger
	config   LogConfig
	mu       sync.Mutex
	fileSink io.WriteCloser
	console  io.Writer
}

// NewLogger builds a logrus logger writing to console (stderr, so it never
// mixes with generated results on stdout) and/or a rotated log file.
func NewLogger(config LogConfig, service, version string) (*Logger, error) {
	l := &Logger{
		Logger:  logrus.New(),
		config:  normalizeConfig(config),
		console: os.Stderr,
	}

	level, err := logrus.ParseLevel(l.config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch l.config.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	if err := l.setOutput(); err != nil {
		return nil, err
	}

	if l.IsLevelEnabled(logrus.DebugLevel) {
		l.AddHook(&CallerHook{})
	}
	l.AddHook(&ServiceHook{Service: service, Version: version})
	return l, nil
}

func normalizeConfig(c LogConfig) LogConfig {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if c.Level == "" {
		c.Level = "info"
	}
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = "text"
	}
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if c.Output == "" {
		switch {
		case c.EnableConsole && c.FileLocation != "":
			c.Output = "both"
		case c.FileLocation != "":
			c.Output = "file"
		default:
			c.Output = "console"
		}
	}
	return c
}

func (l *Logger) setOutput() error {
	var writers []io.Writer

	wantConsole := l.config.Output == "console" || l.config.Output == "both"
	wantFile := l.config.Output == "file" || l.config.Output == "both"

	if wantFile && l.config.FileLocation != "" {
		if err := os.MkdirAll(filepath.Dir(l.config.FileLocation), 0o755); err != nil {
			return err
		}
		lj := &lumberjack.Logger{
			Filename:   l.config.FileLocation,
			MaxSize:    max(1, l.config.MaxSize),
			MaxBackups: max(0, l.config.MaxBackups),
			MaxAge:     max(0, l.config.MaxAge),
			Compress:   l.config.Compress,
		}
		l.fileSink = lj
		writers = append(writers, lj)
	}

	if wantConsole || len(writers) == 0 {
		writers = append(writers, l.console)
	}

	if tf, ok := l.Formatter.(*logrus.TextFormatter); ok && l.fileSink != nil {
		tf.DisableColors = true
	}

	l.SetOutput(io.MultiWriter(writers...))
	return nil
}

func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lj, ok := l.fileSink.(*lumberjack.Logger); ok {
		return lj.Rotate()
	}
	return nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileSink != nil {
		return l.fileSink.Close()
	}
	return nil
}

func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}

// Install copies output, level, formatter and hooks onto the logrus
// standard logger so package level logrus calls behave the same way.
func (l *Logger) Install() {
	std := logrus.StandardLogger()
	std.SetOutput(l.Out)
	std.SetLevel(l.Level)
	std.SetFormatter(l.Formatter)
	std.ReplaceHooks(make(logrus.LevelHooks))
	for _, hooks := range l.Hooks {
		for _, h := range hooks {
			std.AddHook(h)
		}
	}
}

type CallerHook struct{}

func (h *CallerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *CallerHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["caller"]; ok {
		return nil
	}

	const maxDepth = 25
	for i := 4; i < 4+maxDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		fnName := ""
		if fn != nil {
			fnName = fn.Name()
		}
		if strings.Contains(file, "/sirupsen/logrus") || strings.Contains(file, "/pkg/utils/logger.go") {
			continue
		}
		entry.Data["caller"] = shortFunc(fnName) + ":" + strconv.Itoa(line)
		break
	}
	return nil
}

func shortFunc(full string) string {
	if idx := strings.LastIndex(full, "/"); idx >= 0 && idx+1 < len(full) {
		full = full[idx+1:]
	}
	return full
}

type ServiceHook struct {
	Service string
	Version string
}

func (h *ServiceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *ServiceHook) Fire(entry *logrus.Entry) error {
	if entry.Logger != nil {
		if _, ok := entry.Logger.Formatter.(*logrus.JSONFormatter); !ok {
			return nil
		}
	}
	entry.Data["service"] = h.Service
	entry.Data["version"] = h.Version
	return nil
}
