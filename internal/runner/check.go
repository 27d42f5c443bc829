package runner

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/gruntwork-io/compose-fleet/internal/discovery"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
	"github.com/gruntwork-io/compose-fleet/internal/report"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed compose_schema.json
var composeSchemaJSON string

var composeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(composeSchemaJSON))
})

// ValidateComposeFile checks that the file parses as YAML and matches the structure of a compose file
// with at least one service. It returns the service names sorted.
func ValidateComposeFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err)
	}

	var document map[string]any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, errors.Errorf("%s is not valid YAML: %w", path, err)
	}

	services, _ := document["services"].(map[string]any)
	if len(services) == 0 {
		return nil, errors.Errorf("%s defines no services", path)
	}

	schema, err := composeSchema()
	if err != nil {
		return nil, errors.New(err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, errors.Errorf("%s is not a valid compose file: %w", path, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, problem := range result.Errors() {
			problems = append(problems, problem.String())
		}

		return nil, errors.Errorf("%s is not a valid compose file: %s", path, strings.Join(problems, "; "))
	}

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}

	slices.Sort(names)

	return names, nil
}

// check validates the project's compose file and reports its identity and running containers.
func (c *Controller) check(ctx context.Context, engine *Engine, task Task, project *discovery.Project) *report.Run {
	description := "validate " + project.ComposeFile

	return engine.RunAction(ctx, task.WithOperation(CommandCheck, task.Spec), description, report.ReasonCheckFailed, func(ctx context.Context) error {
		l := engine.projectLogger(task)

		services, err := ValidateComposeFile(project.ComposeFile)
		if err != nil {
			l.Errorf("%v", err)
			return err
		}

		running := "unknown"

		if c.runtime != nil {
			if containers, err := c.runtime.RunningContainers(ctx, task.Identity); err != nil {
				l.Debugf("Failed to query running containers: %v", err)
			} else {
				running = fmt.Sprintf("%d", len(containers))
			}
		}

		fmt.Fprintf(c.opts.Writer, "%s: %d service(s), identity %s, running containers %s\n", project.Name, len(services), task.Identity, running)

		return nil
	})
}
