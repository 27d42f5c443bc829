package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Format is the format of a report file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath derives the report format from the file extension, CSV unless it is ".json".
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatCSV
}

// JSONRun represents a run in JSON format.
type JSONRun struct {
	// Started is when the operation began.
	Started time.Time `json:"Started" jsonschema:"required"`
	// Ended is when the operation finished or was skipped.
	Ended time.Time `json:"Ended" jsonschema:"required"`
	// Reason explains a skip or a failure.
	Reason *string `json:"Reason,omitempty" jsonschema:"enum=[dry-run],enum=not running,enum=pull failed,enum=changes found,enum=up to date,enum=hook failed,enum=not started,enum=check failed,enum=runtime query failed"`
	// ExitCode is the exit code of the executed command, when one ran.
	ExitCode *int `json:"ExitCode,omitempty"`
	// Project is the project directory name.
	Project string `json:"Project" jsonschema:"required"`
	// Identity is the compose project name used for the runtime.
	Identity string `json:"Identity,omitempty"`
	// Operation is the compose operation, hook or fleet action.
	Operation string `json:"Operation" jsonschema:"required"`
	// Result is the outcome of the operation.
	Result string `json:"Result" jsonschema:"required,enum=succeeded,enum=failed,enum=skipped"`
	// TimedOut is set when the operation was killed by the timeout.
	TimedOut bool `json:"TimedOut,omitempty"`
}

// SchemaValidationError lists the violations of a report against its schema.
type SchemaValidationError struct {
	Errors []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed with %d error(s): %v", len(e.Errors), e.Errors)
}

// ValidateJSONReport validates a JSON report against the schema.
// Returns nil if valid, or a SchemaValidationError with details if invalid.
func ValidateJSONReport(data []byte) error {
	schemaBytes, err := json.Marshal(generateReportSchema())
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate report: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, validationErr := range result.Errors() {
			errs[i] = validationErr.String()
		}

		return &SchemaValidationError{Errors: errs}
	}

	return nil
}

// WriteToFile writes the report to the path, replacing the file. The format follows the extension.
func (r *Report) WriteToFile(path string) error {
	return writeFileAtomic(path, ".fleet-report-*", func(w io.Writer) error {
		if FormatFromPath(path) == FormatJSON {
			return r.WriteJSON(w)
		}

		return r.WriteCSV(w)
	})
}

// WriteSchemaToFile writes the JSON schema of the report to the path, replacing the file.
func WriteSchemaToFile(path string) error {
	return writeFileAtomic(path, ".fleet-schema-*", WriteSchema)
}

// WriteSchema writes the JSON schema of the report to a writer.
func WriteSchema(w io.Writer) error {
	jsonBytes, err := json.MarshalIndent(generateReportSchema(), "", "  ")
	if err != nil {
		return err
	}

	jsonBytes = append(jsonBytes, '\n')

	_, err = w.Write(jsonBytes)

	return err
}

func writeFileAtomic(path, pattern string, write func(w io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), pattern)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmpFile.Name()) //nolint:errcheck

	if err := write(tmpFile); err != nil {
		tmpFile.Close() //nolint:errcheck
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return os.Rename(tmpFile.Name(), path)
}

// WriteCSV writes the report to a writer in CSV format.
func (r *Report) WriteCSV(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	csvWriter := csv.NewWriter(w)

	err := csvWriter.Write([]string{
		"Project",
		"Identity",
		"Operation",
		"Started",
		"Ended",
		"Result",
		"ExitCode",
		"TimedOut",
		"Reason",
	})
	if err != nil {
		return err
	}

	for _, run := range r.Runs {
		jsonRun := run.toJSON()

		exitCode := ""
		if jsonRun.ExitCode != nil {
			exitCode = strconv.Itoa(*jsonRun.ExitCode)
		}

		reason := ""
		if jsonRun.Reason != nil {
			reason = *jsonRun.Reason
		}

		err := csvWriter.Write([]string{
			jsonRun.Project,
			jsonRun.Identity,
			jsonRun.Operation,
			jsonRun.Started.Format(time.RFC3339),
			jsonRun.Ended.Format(time.RFC3339),
			jsonRun.Result,
			exitCode,
			strconv.FormatBool(jsonRun.TimedOut),
			reason,
		})
		if err != nil {
			return err
		}
	}

	csvWriter.Flush()

	return csvWriter.Error()
}

// WriteJSON writes the report to a writer in JSON format.
func (r *Report) WriteJSON(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]JSONRun, 0, len(r.Runs))
	for _, run := range r.Runs {
		runs = append(runs, run.toJSON())
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(runs)
}

func (run *Run) toJSON() JSONRun {
	run.mu.RLock()
	defer run.mu.RUnlock()

	jsonRun := JSONRun{
		Started:   run.Started,
		Ended:     run.Ended,
		ExitCode:  run.ExitCode,
		Project:   run.Project,
		Identity:  run.Identity,
		Operation: run.Operation,
		Result:    string(run.Result),
		TimedOut:  run.TimedOut,
	}

	if run.Reason != nil {
		reason := string(*run.Reason)
		jsonRun.Reason = &reason
	}

	return jsonRun
}

// generateReportSchema generates the JSON schema for report validation.
func generateReportSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	schema := reflector.Reflect(&JSONRun{})
	schema.Title = "Fleet Run"
	schema.Description = "One operation of a fleet run"

	return &jsonschema.Schema{
		Type:        "array",
		Title:       "Fleet Run Report Schema",
		Description: "Array of operations recorded by a fleet run",
		Items:       schema,
	}
}
