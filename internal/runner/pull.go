package runner

import (
	"strings"

	"github.com/gruntwork-io/compose-fleet/internal/report"
)

// Markers in the output of `compose pull` telling that an image was downloaded. The wording differs
// between runtime versions and locales, so the classification is best-effort.
var pullChangeMarkers = []string{
	"downloaded newer image",
	"pull complete",
	"download complete",
	"extracting",
}

// ClassifyPull annotates a successful pull by its output.
func ClassifyPull(output string) report.Reason {
	output = strings.ToLower(output)

	for _, marker := range pullChangeMarkers {
		if strings.Contains(output, marker) {
			return report.ReasonChangesFound
		}
	}

	return report.ReasonUpToDate
}
