package list

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gruntwork-io/compose-fleet/internal/os/stdout"
	"github.com/gruntwork-io/compose-fleet/internal/runner"
	"github.com/gruntwork-io/compose-fleet/options"
)

const (
	stateActive   = "active"
	stateInactive = "inactive"
	unknownCount  = "?"
)

type Colorizer struct {
	headingStyle  lipgloss.Style
	projectStyle  lipgloss.Style
	inactiveStyle lipgloss.Style
	cellStyle     lipgloss.Style
}

// NewColorizer returns the table styles, plain ones when colors are disabled.
func NewColorizer(shouldColor bool) *Colorizer {
	cell := lipgloss.NewStyle().PaddingRight(2)

	if !shouldColor {
		return &Colorizer{
			headingStyle:  cell,
			projectStyle:  cell,
			inactiveStyle: cell,
			cellStyle:     cell,
		}
	}

	return &Colorizer{
		headingStyle:  cell.Bold(true).Underline(true),
		projectStyle:  cell.Foreground(lipgloss.Color("63")),
		inactiveStyle: cell.Foreground(lipgloss.Color("240")),
		cellStyle:     cell,
	}
}

// Rows renders the project infos as table rows.
func Rows(infos []runner.ProjectInfo) [][]string {
	rows := make([][]string, 0, len(infos))

	for _, info := range infos {
		state := stateActive
		if info.Project.Inactive {
			state = stateInactive
		}

		running := unknownCount
		if info.Running >= 0 {
			running = strconv.Itoa(info.Running)
		}

		rows = append(rows, []string{
			info.Project.Name,
			state,
			filepath.Base(info.Project.ComposeFile),
			info.Identity,
			running,
		})
	}

	return rows
}

// Render writes the projects as a table to the options writer.
func Render(opts *options.FleetOptions, infos []runner.ProjectInfo) error {
	colorizer := NewColorizer(!opts.NoColor && stdout.IsTerminal(opts.Writer))
	rows := Rows(infos)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers("PROJECT", "STATE", "COMPOSE FILE", "IDENTITY", "RUNNING").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return colorizer.headingStyle
			case rows[row][1] == stateInactive:
				return colorizer.inactiveStyle
			case col == 0:
				return colorizer.projectStyle
			default:
				return colorizer.cellStyle
			}
		})

	_, err := fmt.Fprintln(opts.Writer, t.Render())

	return err
}
