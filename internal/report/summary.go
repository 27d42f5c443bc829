package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	prefix              = "   "
	runSummaryHeader    = "❯❯ Run Summary"
	successLabel        = "Succeeded"
	failureLabel        = "Failed"
	skippedLabel        = "Skipped"
	separatorLineLength = 28
	columnSpacing       = 2
)

// Summary formats data from a report for output as a summary.
type Summary struct {
	firstRunStart  *time.Time
	lastRunEnd     *time.Time
	runs           []*Run
	UnitsSucceeded int
	UnitsFailed    int
	UnitsSkipped   int
	shouldColor    bool
}

// Summarize returns a summary of the report.
func (r *Report) Summarize() *Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &Summary{
		shouldColor: r.shouldColor,
		runs:        r.Runs,
	}

	for _, run := range r.Runs {
		summary.Update(run)
	}

	return summary
}

// TotalUnits returns the number of recorded operations.
func (s *Summary) TotalUnits() int {
	return len(s.runs)
}

// Update adds the run to the counters.
func (s *Summary) Update(run *Run) {
	run.mu.RLock()
	defer run.mu.RUnlock()

	switch run.Result {
	case ResultSucceeded:
		s.UnitsSucceeded++
	case ResultFailed:
		s.UnitsFailed++
	case ResultSkipped:
		s.UnitsSkipped++
	}

	if s.firstRunStart == nil || run.Started.Before(*s.firstRunStart) {
		s.firstRunStart = &run.Started
	}

	if !run.Ended.IsZero() && (s.lastRunEnd == nil || run.Ended.After(*s.lastRunEnd)) {
		s.lastRunEnd = &run.Ended
	}
}

// TotalDuration returns the total duration of all runs in the report.
func (s *Summary) TotalDuration() time.Duration {
	if s.firstRunStart == nil || s.lastRunEnd == nil {
		return 0
	}

	return s.lastRunEnd.Sub(*s.firstRunStart)
}

// WriteSummary writes the summary to a writer.
func (r *Report) WriteSummary(w io.Writer) error {
	return r.Summarize().Write(w)
}

// Write writes the summary: a header with totals, then the operations grouped by result.
func (s *Summary) Write(w io.Writer) error {
	colorizer := NewColorizer(s.shouldColor)

	header := fmt.Sprintf("%s  %s  %s",
		colorizer.headingTitleColorizer(runSummaryHeader),
		colorizer.headingUnitColorizer(fmt.Sprintf("%d operations", s.TotalUnits())),
		colorizer.colorDuration(s.TotalDuration()),
	)

	if _, err := fmt.Fprintf(w, "\n%s\n%s%s\n", header, prefix, strings.Repeat("─", separatorLineLength)); err != nil {
		return err
	}

	if s.TotalUnits() == 0 {
		_, err := fmt.Fprintf(w, "%sNo operations were run\n", prefix)
		return err
	}

	categories := []struct {
		colorizer func(string) string
		result    Result
		label     string
		count     int
	}{
		{colorizer.successColorizer, ResultSucceeded, successLabel, s.UnitsSucceeded},
		{colorizer.failureColorizer, ResultFailed, failureLabel, s.UnitsFailed},
		{colorizer.skippedColorizer, ResultSkipped, skippedLabel, s.UnitsSkipped},
	}

	projectWidth, operationWidth := s.columnWidths()

	for _, category := range categories {
		if category.count == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, category.colorizer(category.label+" ("+strconv.Itoa(category.count)+")")); err != nil {
			return err
		}

		for _, run := range s.runs {
			if run.GetResult() != category.result {
				continue
			}

			if err := s.writeRun(w, run, colorizer, projectWidth, operationWidth); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Summary) writeRun(w io.Writer, run *Run, colorizer *Colorizer, projectWidth, operationWidth int) error {
	run.mu.RLock()
	name, operation, identity := run.Project, run.Operation, run.Identity
	run.mu.RUnlock()

	if identity != "" && identity != name {
		name += " (" + identity + ")"
	}

	line := prefix + prefix + pad(name, projectWidth) + pad(operation, operationWidth) + colorizer.detailColorizer(run.Detail())

	_, err := fmt.Fprintln(w, strings.TrimRight(line, " "))

	return err
}

func (s *Summary) columnWidths() (int, int) {
	var projectWidth, operationWidth int

	for _, run := range s.runs {
		name := run.Project
		if run.Identity != "" && run.Identity != run.Project {
			name += " (" + run.Identity + ")"
		}

		projectWidth = max(projectWidth, utf8.RuneCountInString(name))
		operationWidth = max(operationWidth, utf8.RuneCountInString(run.Operation))
	}

	return projectWidth + columnSpacing, operationWidth + columnSpacing
}

func pad(str string, width int) string {
	return str + strings.Repeat(" ", max(0, width-utf8.RuneCountInString(str)))
}
