package filter

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/gruntwork-io/compose-fleet/internal/discovery"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

// Gate names, used in the debug output of rejected projects.
const (
	GateInactive = "inactive"
	GateSelected = "selection"
	GateOnly     = "only"
	GateExclude  = "exclude"
)

const globMetaChars = "*?[{"

// Config is the user's selection of projects.
type Config struct {
	// Projects are the names given as command arguments.
	Projects []string
	// Only lists the names or patterns a project must match.
	Only []string
	// Exclude lists the names or patterns a project must not match.
	Exclude []string

	IncludeInactive bool
	OnlyInactive    bool
	// RunningOnly is not a selection gate, it is consumed at execution time.
	RunningOnly bool
}

// Validate checks that every pattern of the only and exclude lists compiles.
func (cfg *Config) Validate() error {
	for _, list := range [][]string{cfg.Only, cfg.Exclude} {
		for _, item := range list {
			if !isPattern(item) {
				continue
			}

			if _, err := glob.Compile(item); err != nil {
				return errors.New(InvalidPatternError{Pattern: item, Err: err})
			}
		}
	}

	return nil
}

// Apply returns the projects passing every gate, in their original order. The result may be empty.
func Apply(l log.Logger, projects discovery.Projects, cfg Config) discovery.Projects {
	var (
		selected = newMatcher(cfg.Projects, false)
		only     = newMatcher(cfg.Only, true)
		exclude  = newMatcher(cfg.Exclude, true)
		result   = make(discovery.Projects, 0, len(projects))
	)

	for _, project := range projects {
		if gate := reject(project, cfg, selected, only, exclude); gate != "" {
			l.WithField(log.FieldKeyProject, project.Name).Debugf("Excluded by %s filter", gate)
			continue
		}

		result = append(result, project)
	}

	for _, name := range cfg.Projects {
		if projects.Find(name) == nil {
			l.Warnf("Project %q not found", name)
		}
	}

	return result
}

// reject returns the name of the first gate the project fails, or an empty string.
func reject(project *discovery.Project, cfg Config, selected, only, exclude *matcher) string {
	switch {
	case cfg.OnlyInactive && !project.Inactive:
		return GateInactive
	case !cfg.OnlyInactive && project.Inactive && !cfg.IncludeInactive:
		return GateInactive
	case !selected.empty() && !selected.match(project.Name):
		return GateSelected
	case !only.empty() && !only.match(project.Name):
		return GateOnly
	case !exclude.empty() && exclude.match(project.Name):
		return GateExclude
	}

	return ""
}

type matcher struct {
	names    map[string]struct{}
	patterns []glob.Glob
}

// newMatcher builds a matcher of exact names, and of glob patterns when allowed. A pattern that
// does not compile is matched literally.
func newMatcher(items []string, allowPatterns bool) *matcher {
	m := &matcher{names: make(map[string]struct{}, len(items))}

	for _, item := range items {
		if allowPatterns && isPattern(item) {
			if g, err := glob.Compile(item); err == nil {
				m.patterns = append(m.patterns, g)
				continue
			}
		}

		m.names[item] = struct{}{}
	}

	return m
}

func (m *matcher) empty() bool {
	return len(m.names) == 0 && len(m.patterns) == 0
}

func (m *matcher) match(name string) bool {
	if _, ok := m.names[name]; ok {
		return true
	}

	for _, g := range m.patterns {
		if g.Match(name) {
			return true
		}
	}

	return false
}

func isPattern(item string) bool {
	return strings.ContainsAny(item, globMetaChars)
}
