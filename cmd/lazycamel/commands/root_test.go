package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFlags(t *testing.T) {
	root := NewRoot()

	for _, name := range []string{"mock", "endpoint", "namespace", "log-level"} {
		assert.NotNil(t, root.Flags().Lookup(name), name)
	}
	assert.Equal(t, "e", root.Flags().Lookup("endpoint").Shorthand)
}

func TestSubcommands(t *testing.T) {
	root := NewRoot()

	cmd, _, err := root.Find([]string{"mock-server"})
	require.NoError(t, err)
	assert.Equal(t, "mock-server", cmd.Name())
	assert.Equal(t, "/jsonrpc", cmd.Flags().Lookup("path").DefValue)
	assert.Equal(t, "camel-quarkus-core", cmd.Flags().Lookup("namespace").DefValue)
	assert.Equal(t, "1s", cmd.Flags().Lookup("interval").DefValue)
}

func TestVersionCommand(t *testing.T) {
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "lazycamel dev")
}
