// Package identity derives the compose project label of a project directory.
//
// The container runtime groups containers by a project label. A label already in use by running
// containers is reused, so a cosmetic rename of a directory (e.g. a case change) never orphans
// containers under a fresh label. The lookup is best-effort: labels may change between the query
// and the compose invocation that uses them.
package identity

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/gruntwork-io/compose-fleet/pkg/log"
)

// Placeholder is the label used when nothing of the directory name survives sanitization.
const Placeholder = "p"

// Sanitize lowercases the name, collapses every run of characters outside [a-z0-9_-] to a single "-",
// trims "-" from both ends and strips leading characters outside [a-z0-9].
func Sanitize(name string) string {
	var (
		sb         strings.Builder
		inRejected bool
	)

	for _, r := range strings.ToLower(name) {
		if isAllowed(r) {
			sb.WriteRune(r)

			inRejected = false

			continue
		}

		if !inRejected {
			sb.WriteByte('-')

			inRejected = true
		}
	}

	label := strings.Trim(sb.String(), "-")
	label = strings.TrimLeftFunc(label, func(r rune) bool {
		return !isAlphanumeric(r)
	})

	if label == "" {
		return Placeholder
	}

	return label
}

// Lowered is the plain lowercase name, a label variant some runtimes historically accepted.
func Lowered(name string) string {
	return strings.ToLower(name)
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func isAllowed(r rune) bool {
	return isAlphanumeric(r) || r == '_' || r == '-'
}

// Resolver resolves project labels against the running containers, memoising results per directory.
// A resolver lives for a single command, a later command must create a new one.
type Resolver struct {
	runtime runtime.Runtime
	logger  log.Logger
	cache   map[string]string
	mu      sync.Mutex
}

// NewResolver returns a resolver querying the given runtime. A nil runtime resolves every directory
// to its sanitized name.
func NewResolver(l log.Logger, rt runtime.Runtime) *Resolver {
	return &Resolver{
		runtime: rt,
		logger:  l,
		cache:   make(map[string]string),
	}
}

// Resolve returns the label for the directory: the sanitized base name if running containers carry it,
// else the lowercase base name if running containers carry that, else the sanitized base name.
func (resolver *Resolver) Resolve(ctx context.Context, dir string) string {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()

	if label, ok := resolver.cache[dir]; ok {
		return label
	}

	label := resolver.resolve(ctx, dir)
	resolver.cache[dir] = label

	return label
}

func (resolver *Resolver) resolve(ctx context.Context, dir string) string {
	base := filepath.Base(dir)
	sanitized := Sanitize(base)

	if resolver.runtime == nil {
		return sanitized
	}

	candidates := []string{sanitized}
	if lowered := Lowered(base); lowered != sanitized {
		candidates = append(candidates, lowered)
	}

	for _, candidate := range candidates {
		containers, err := resolver.runtime.RunningContainers(ctx, candidate)
		if err != nil {
			resolver.logger.Debugf("Failed to query running containers of %s, using label %s: %v", candidate, sanitized, err)
			return sanitized
		}

		if len(containers) > 0 {
			resolver.logger.Debugf("Reusing label %s of %d running container(s) for %s", candidate, len(containers), dir)
			return candidate
		}
	}

	return sanitized
}
