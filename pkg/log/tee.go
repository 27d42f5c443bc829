package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gruntwork-io/compose-fleet/internal/errors"
)

const logFileMode = 0o644

// escapeSeq matches CSI sequences such as colors and cursor movement, and OSC sequences such as hyperlinks.
var escapeSeq = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

// StripColors removes terminal escape sequences so the log file holds plain text.
func StripColors(str string) string {
	if !strings.Contains(str, "\x1b") {
		return str
	}

	return escapeSeq.ReplaceAllString(str, "")
}

// LogDestinationUnwritableError is returned when neither the log file nor its fallback can be opened.
type LogDestinationUnwritableError struct {
	Path         string
	FallbackPath string
	Err          error
}

func (err LogDestinationUnwritableError) Error() string {
	return fmt.Sprintf("log file %s and fallback %s are not writable: %v", err.Path, err.FallbackPath, err.Err)
}

func (err LogDestinationUnwritableError) Unwrap() error {
	return err.Err
}

// TeeWriter duplicates everything written to the screen into an append-only log file.
// Color escape sequences are stripped from the file copy.
type TeeWriter struct {
	screen io.Writer
	file   *os.File

	// Path is the log file actually in use.
	Path string
	// UsedFallback is true when the configured path was unwritable and the fallback is in use.
	UsedFallback bool

	mu *sync.Mutex
}

// NewTeeWriter opens `path` for appending, or `fallbackPath` if `path` is not writable.
func NewTeeWriter(screen io.Writer, path, fallbackPath string) (*TeeWriter, error) {
	tee := &TeeWriter{screen: screen, mu: new(sync.Mutex)}

	file, err := openLogFile(path)
	if err == nil {
		tee.file, tee.Path = file, path
		return tee, nil
	}

	if fallbackPath == "" || fallbackPath == path {
		return nil, errors.New(LogDestinationUnwritableError{Path: path, FallbackPath: fallbackPath, Err: err})
	}

	file, fallbackErr := openLogFile(fallbackPath)
	if fallbackErr != nil {
		return nil, errors.New(LogDestinationUnwritableError{Path: path, FallbackPath: fallbackPath, Err: fallbackErr})
	}

	tee.file, tee.Path, tee.UsedFallback = file, fallbackPath, true

	return tee, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
}

// WriteHeader writes a banner separating this invocation from the previous ones in the log file only.
func (tee *TeeWriter) WriteHeader(runID string, args []string) error {
	tee.mu.Lock()
	defer tee.mu.Unlock()

	_, err := fmt.Fprintf(tee.file, "\n===== run %s started %s: %v =====\n", runID, time.Now().Format(time.RFC3339), args)

	return err
}

// Write implements io.Writer. Errors writing the log file never fail the screen output.
func (tee *TeeWriter) Write(p []byte) (int, error) {
	return tee.write(tee.screen, p)
}

func (tee *TeeWriter) write(screen io.Writer, p []byte) (int, error) {
	tee.mu.Lock()
	defer tee.mu.Unlock()

	n, err := screen.Write(p)

	if tee.file != nil {
		_, _ = io.WriteString(tee.file, StripColors(string(p)))
	}

	return n, err
}

// WithScreen returns a writer duplicating another screen stream, e.g. stderr, into the same log file.
// Only the original writer closes the file.
func (tee *TeeWriter) WithScreen(screen io.Writer) io.Writer {
	return &teeStream{parent: tee, screen: screen}
}

type teeStream struct {
	parent *TeeWriter
	screen io.Writer
}

func (stream *teeStream) Write(p []byte) (int, error) {
	return stream.parent.write(stream.screen, p)
}

func (stream *teeStream) Fd() uintptr {
	return fd(stream.screen)
}

// Fd exposes the screen descriptor, so that terminal detection keeps working through the tee.
func (tee *TeeWriter) Fd() uintptr {
	return fd(tee.screen)
}

func fd(screen io.Writer) uintptr {
	if file, ok := screen.(interface{ Fd() uintptr }); ok {
		return file.Fd()
	}

	return ^uintptr(0)
}

// Close closes the log file.
func (tee *TeeWriter) Close() error {
	tee.mu.Lock()
	defer tee.mu.Unlock()

	if tee.file == nil {
		return nil
	}

	err := tee.file.Close()
	tee.file = nil

	return err
}
