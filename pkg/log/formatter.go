package log

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const defaultTimestampFormat = "15:04:05"

// Formatter is used to implement a custom Formatter.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Entry is the final logging entry.
type Entry struct {
	*logrus.Entry
	Level  Level
	Fields Fields
}

// fromLogrusFormatter converts call from logrus.Formatter interface to our log.Formatter interface.
type fromLogrusFormatter struct {
	Formatter
}

func (f *fromLogrusFormatter) Format(parent *logrus.Entry) ([]byte, error) {
	entry := &Entry{
		Entry:  parent,
		Level:  FromLogrusLevel(parent.Level),
		Fields: Fields(parent.Data),
	}

	return f.Formatter.Format(entry)
}

// PrettyFormatter renders `15:04:05 INFO  [project] message key=value` lines.
type PrettyFormatter struct {
	// TimestampFormat is the layout of the time prefix, empty disables it.
	TimestampFormat string

	// DisableColors forces plain output. For a TTY colors are enabled by default.
	DisableColors bool

	colors *palette
}

// NewPrettyFormatter returns a new PrettyFormatter instance with default values.
func NewPrettyFormatter() *PrettyFormatter {
	return &PrettyFormatter{
		TimestampFormat: defaultTimestampFormat,
		colors:          newPalette(),
	}
}

// Format implements Formatter.
func (formatter *PrettyFormatter) Format(entry *Entry) ([]byte, error) {
	buf := entry.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	var (
		level     = strings.ToUpper(fmt.Sprintf("%-5s ", entry.Level))
		timestamp string
		project   string
	)

	if formatter.TimestampFormat != "" {
		timestamp = entry.Time.Format(formatter.TimestampFormat) + " "
	}

	if val, ok := entry.Fields[FieldKeyProject].(string); ok && val != "" {
		project = fmt.Sprintf("[%s] ", val)
	}

	if !formatter.DisableColors {
		level = formatter.colors.level(entry.Level)(level)
		project = formatter.colors.project(project)
		timestamp = formatter.colors.timestamp(timestamp)
	}

	if _, err := fmt.Fprintf(buf, "%s%s%s%s", timestamp, level, project, entry.Message); err != nil {
		return nil, err
	}

	for _, key := range entry.Fields.Keys(FieldKeyProject) {
		if _, err := fmt.Fprintf(buf, " %s=%v", key, entry.Fields[key]); err != nil {
			return nil, err
		}
	}

	if err := buf.WriteByte('\n'); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
