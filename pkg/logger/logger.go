package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	DefaultDir      = "logs"
	DefaultTestName = "general"
)

// unsafeChars are replaced with '-' when the test name becomes a file name.
var unsafeChars = strings.NewReplacer(
	":", "-", "/", "-", `\`, "-", "*", "-", "?", "-",
	`"`, "-", "<", "-", ">", "-", "|", "-",
)

// fileLocks serializes appends per resolved path across all Loggers in the
// process.
var fileLocks sync.Map

type Logger struct {
	testName string
	path     string
	fs       afero.Fs
	console  io.Writer
	now      func() time.Time
}

type options struct {
	dir     string
	fs      afero.Fs
	console io.Writer
	now     func() time.Time
}

type Option func(*options)

// WithDir overrides the log directory (default "logs").
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithConsole sets where entries are echoed. A nil writer disables the echo.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Create prepares a Logger for testName. The log directory is created with
// parents when missing; an existing directory and its files are left alone.
func Create(testName string, opts ...Option) (*Logger, error) {
	o := options{
		dir:     DefaultDir,
		fs:      afero.NewOsFs(),
		console: os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if testName == "" {
		testName = DefaultTestName
	}

	if exists, _ := afero.DirExists(o.fs, o.dir); !exists {
		if err := o.fs.MkdirAll(o.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", o.dir, err)
		}
	}

	date := o.now().UTC().Format("2006-01-02")
	name := fmt.Sprintf("%s-%s.log", unsafeChars.Replace(testName), date)

	return &Logger{
		testName: testName,
		path:     filepath.Join(o.dir, name),
		fs:       o.fs,
		console:  o.console,
		now:      o.now,
	}, nil
}

// Log appends one entry. data is optional: no argument or a single nil means
// no payload, several arguments are encoded as a JSON array. The entry is
// echoed to the console only after it reached the file.
func (l *Logger) Log(level Level, message string, data ...any) error {
	line := newEntry(l.now(), level, message, data).String() + "\n"

	if err := l.appendLine(line); err != nil {
		return err
	}

	if l.console != nil {
		if _, err := io.WriteString(l.console, line); err != nil {
			return fmt.Errorf("echo log entry: %w", err)
		}
	}

	return nil
}

func (l *Logger) appendLine(line string) error {
	mu, _ := fileLocks.LoadOrStore(l.path, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", l.path, err)
	}

	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("append to log file %s: %w", l.path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file %s: %w", l.path, err)
	}

	return nil
}

func (l *Logger) Info(message string, data ...any) error {
	return l.Log(LevelInfo, message, data...)
}

func (l *Logger) Error(message string, data ...any) error {
	return l.Log(LevelError, message, data...)
}

func (l *Logger) Warn(message string, data ...any) error {
	return l.Log(LevelWarn, message, data...)
}

func (l *Logger) Debug(message string, data ...any) error {
	return l.Log(LevelDebug, message, data...)
}

func (l *Logger) Success(message string, data ...any) error {
	return l.Log(LevelSuccess, message, data...)
}

// Step logs a numbered step. Numbers are not checked for order or uniqueness.
func (l *Logger) Step(n int, description string) error {
	return l.Log(LevelStep, fmt.Sprintf("[Step %d] %s", n, description))
}

func (l *Logger) TestStart(name string) error {
	return l.Log(LevelTest, fmt.Sprintf("========== TEST START: %s ==========", name))
}

// TestEnd closes the banner opened by TestStart. Callers decide the status,
// including from their failure paths.
func (l *Logger) TestEnd(name string, status Status) error {
	return l.Log(LevelTest, fmt.Sprintf("========== TEST END: %s - %s ==========", name, status))
}

// LogFilePath returns the file entries are appended to.
func (l *Logger) LogFilePath() string {
	return l.path
}

func (l *Logger) TestName() string {
	return l.testName
}
