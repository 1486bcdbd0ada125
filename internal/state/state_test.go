package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lazycamel/lazycamel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingState(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	st, err := Load()
	require.NoError(t, err)
	assert.Equal(t, models.ConsoleRoute, st.ActivePanel)
	assert.NotNil(t, st.Filters)
	assert.NotNil(t, st.Options)
}

func TestSaveAndLoadState(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	st := DefaultState()
	st.Endpoint = "dev"
	st.ActivePanel = models.ConsoleMicrometer
	st.Filters[models.ConsoleRoute] = "kafka"
	st.Options[models.ConsoleRoute] = models.Options{"limit": 10}
	require.NoError(t, Save(st))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", loaded.Endpoint)
	assert.Equal(t, models.ConsoleMicrometer, loaded.ActivePanel)
	assert.Equal(t, "kafka", loaded.Filters[models.ConsoleRoute])
	assert.Equal(t, models.Options{"limit": 10}, loaded.OptionsFor(models.ConsoleRoute))
}

func TestOptionsForReturnsCopy(t *testing.T) {
	st := DefaultState()
	st.Options[models.ConsoleEvent] = models.Options{"limit": 5}

	opts := st.OptionsFor(models.ConsoleEvent)
	opts["limit"] = 1
	assert.Equal(t, 5, st.Options[models.ConsoleEvent]["limit"])

	assert.NotNil(t, st.OptionsFor(models.ConsoleRest))
}

func TestLoadCorruptState(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lazycamel"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lazycamel", "state.yml"), []byte("filters: [x"), 0644))

	st, err := Load()
	assert.Error(t, err)
	assert.Equal(t, DefaultState(), st)
}
