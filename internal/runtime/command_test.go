package runtime_test

import (
	"testing"

	"github.com/gruntwork-io/compose-fleet/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeSpecs(t *testing.T) {
	t.Parallel()

	compose, err := runtime.NewCompose("")
	require.NoError(t, err)

	spec := compose.Up("/srv/web", "/srv/web/compose.yaml", "web")

	assert.Equal(t, "docker", spec.Program)
	assert.Equal(t, []string{"compose", "-f", "/srv/web/compose.yaml", "-p", "web", "up", "-d"}, spec.Args)
	assert.Equal(t, "/srv/web", spec.Dir)

	assert.Equal(t, []string{"compose", "-f", "f.yml", "-p", "p", "pull"}, compose.Pull("d", "f.yml", "p").Args)
	assert.Equal(t, []string{"compose", "-f", "f.yml", "-p", "p", "ps"}, compose.Ps("d", "f.yml", "p").Args)
	assert.Equal(t, []string{"compose", "-f", "f.yml", "-p", "p", "restart"}, compose.Restart("d", "f.yml", "p").Args)
	assert.Equal(t, []string{"compose", "-f", "f.yml", "-p", "p", "down"}, compose.Down("d", "f.yml", "p").Args)
}

func TestCustomComposeCommand(t *testing.T) {
	t.Parallel()

	compose, err := runtime.NewCompose(`podman-compose --podman-path "/opt/my podman"`)
	require.NoError(t, err)

	spec := compose.Down("/srv/db", "/srv/db/compose.yml", "db")

	assert.Equal(t, "podman-compose", spec.Program)
	assert.Equal(t, []string{"--podman-path", "/opt/my podman", "-f", "/srv/db/compose.yml", "-p", "db", "down"}, spec.Args)
	assert.Equal(t, `podman-compose --podman-path '/opt/my podman' -f /srv/db/compose.yml -p db down`, spec.String())

	_, err = runtime.NewCompose(`docker "compose`)
	require.Error(t, err)
}

func TestCommandSpecStringQuotes(t *testing.T) {
	t.Parallel()

	spec := runtime.CommandSpec{Program: "/hooks/post-update_my app.sh", Args: []string{"my app", "", "it's"}}

	assert.Equal(t, `'/hooks/post-update_my app.sh' 'my app' '' 'it'\''s'`, spec.String())
}
