package report

import (
	"fmt"
	"time"

	"github.com/mgutz/ansi"
)

// Colorizer is a colorizer for the run summary output.
type Colorizer struct {
	headingTitleColorizer func(string) string
	headingUnitColorizer  func(string) string
	successColorizer      func(string) string
	failureColorizer      func(string) string
	skippedColorizer      func(string) string
	detailColorizer       func(string) string
	millisecondColorizer  func(string) string
	secondColorizer       func(string) string
	minuteColorizer       func(string) string
	defaultColorizer      func(string) string
}

// NewColorizer creates a new Colorizer.
func NewColorizer(shouldColor bool) *Colorizer {
	if !shouldColor {
		noColor := func(s string) string { return s }

		return &Colorizer{
			headingTitleColorizer: noColor,
			headingUnitColorizer:  noColor,
			successColorizer:      noColor,
			failureColorizer:      noColor,
			skippedColorizer:      noColor,
			detailColorizer:       noColor,
			millisecondColorizer:  noColor,
			secondColorizer:       noColor,
			minuteColorizer:       noColor,
			defaultColorizer:      noColor,
		}
	}

	return &Colorizer{
		headingTitleColorizer: ansi.ColorFunc("yellow+bh"),
		headingUnitColorizer:  ansi.ColorFunc("white+bh"),
		successColorizer:      ansi.ColorFunc("green+bh"),
		failureColorizer:      ansi.ColorFunc("red+bh"),
		skippedColorizer:      ansi.ColorFunc("blue+bh"),
		detailColorizer:       ansi.ColorFunc("gray"),
		millisecondColorizer:  ansi.ColorFunc("cyan+bh"),
		secondColorizer:       ansi.ColorFunc("green+bh"),
		minuteColorizer:       ansi.ColorFunc("yellow+bh"),
		defaultColorizer:      ansi.ColorFunc("white+bh"),
	}
}

// colorDuration returns the duration as a string, colored based on the duration.
func (c *Colorizer) colorDuration(duration time.Duration) string {
	if duration < 0 {
		return c.defaultColorizer("N/A")
	}

	if duration < time.Second {
		return c.millisecondColorizer(fmt.Sprintf("%dms", duration.Milliseconds()))
	}

	if duration < time.Minute {
		return c.secondColorizer(fmt.Sprintf("%ds", int(duration.Seconds())))
	}

	return c.minuteColorizer(fmt.Sprintf("%dm%ds", int(duration.Minutes()), int(duration.Seconds())%60))
}
