// Package logging provides component loggers for topsize.
//
// Loggers may be obtained at package init time, before Init runs; they
// resolve their output on every call, so output configured later by Init
// applies to them too. Until Init is called, everything is discarded.
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "root", "/home/user")
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jamesainslie/topsize/pkg/topsize/config"
)

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses debug, info, warn (or warning) and error, ignoring case.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level.
	Level string

	// Path is the log file path. Empty uses config.DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components overrides Level for individual components.
	Components map[string]string

	// ConsoleLevel, when set, also writes entries at or above this level
	// to Console. Leave it empty while a full-screen UI owns the terminal.
	ConsoleLevel string

	// Console receives console output. Nil means stderr.
	Console io.Writer
}

// backend holds the charmbracelet loggers one component writes through.
type backend struct {
	file    *log.Logger
	console *log.Logger
}

type state struct {
	mu         sync.RWMutex
	writer     *RotatingWriter
	level      log.Level
	components map[string]log.Level
	console    io.Writer
	consoleLvl log.Level
	backends   map[string]*backend
}

var global = &state{
	level:      log.InfoLevel,
	components: make(map[string]log.Level),
	backends:   make(map[string]*backend),
}

// Init configures the logging system. It may be called again to
// reconfigure; the previous log file is closed.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]log.Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	var console io.Writer
	var consoleLvl log.Level
	if cfg.ConsoleLevel != "" {
		if consoleLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		console = cfg.Console
		if console == nil {
			console = os.Stderr
		}
	}

	path := cfg.Path
	if path == "" {
		path = config.DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.writer != nil {
		_ = global.writer.Close()
	}
	global.writer = writer
	global.level = level
	global.components = components
	global.console = console
	global.consoleLvl = consoleLvl
	global.backends = make(map[string]*backend)

	return nil
}

// Close flushes and closes the log file. Loggers discard output afterwards.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	global.backends = make(map[string]*backend)
	global.console = nil
	if global.writer == nil {
		return nil
	}
	err := global.writer.Close()
	global.writer = nil
	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}

// backendFor returns the cached backend for component, building it on first
// use after each Init.
func (s *state) backendFor(component string) *backend {
	s.mu.RLock()
	b, ok := s.backends[component]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.backends[component]; ok {
		return b
	}

	level := s.level
	if override, ok := s.components[component]; ok {
		level = override
	}

	var out io.Writer = io.Discard
	if s.writer != nil {
		out = s.writer
	}
	b = &backend{
		file: log.NewWithOptions(out, log.Options{
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
	}
	if s.console != nil {
		b.console = log.NewWithOptions(s.console, log.Options{
			Level:           s.consoleLvl,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          component,
		})
	}

	s.backends[component] = b
	return b
}

// Logger writes structured entries for one component.
type Logger struct {
	component string
	fields    []any
}

// Get returns a logger for the given component.
func Get(component string) *Logger {
	return &Logger{component: component}
}

// With returns a logger that adds keyvals to every entry.
func (l *Logger) With(keyvals ...any) *Logger {
	fields := make([]any, 0, len(l.fields)+len(keyvals))
	fields = append(fields, l.fields...)
	fields = append(fields, keyvals...)
	return &Logger{component: l.component, fields: fields}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, keyvals ...any) { l.log(log.DebugLevel, msg, keyvals) }

// Info logs an info message.
func (l *Logger) Info(msg string, keyvals ...any) { l.log(log.InfoLevel, msg, keyvals) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, keyvals ...any) { l.log(log.WarnLevel, msg, keyvals) }

// Error logs an error message.
func (l *Logger) Error(msg string, keyvals ...any) { l.log(log.ErrorLevel, msg, keyvals) }

func (l *Logger) log(level log.Level, msg string, keyvals []any) {
	b := global.backendFor(l.component)
	if len(l.fields) > 0 {
		keyvals = append(l.fields[:len(l.fields):len(l.fields)], keyvals...)
	}
	b.file.Log(level, msg, keyvals...)
	if b.console != nil {
		b.console.Log(level, msg, keyvals...)
	}
}
