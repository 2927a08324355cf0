package discovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/atrium/pkg/extension"
)

func TestSink_RegisterAll(t *testing.T) {
	t.Run("registers every model", func(t *testing.T) {
		sink := NewSink(disabledLogger())
		registrar := &recordingRegistrar{}

		models := []*extension.Model{
			{Name: "m1", Version: "1.0.0"},
			{Name: "m2", Version: "1.0.0"},
			{Name: "m3", Version: "1.0.0"},
		}

		require.NoError(t, sink.RegisterAll(registrar, models))
		assert.Equal(t, []string{"m1", "m2", "m3"}, registrar.names())
	})

	t.Run("registering no models is a no-op", func(t *testing.T) {
		sink := NewSink(disabledLogger())
		registrar := &recordingRegistrar{}

		require.NoError(t, sink.RegisterAll(registrar, nil))
		assert.Empty(t, registrar.names())
	})

	t.Run("returns the registrar's failure naming the model", func(t *testing.T) {
		sink := NewSink(disabledLogger())
		boom := errors.New("registry sealed")
		registrar := &recordingRegistrar{err: boom}

		err := sink.RegisterAll(registrar, []*extension.Model{{Name: "m1", Version: "1.0.0"}})

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to register extension m1")
	})

	t.Run("works against the real extension manager", func(t *testing.T) {
		sink := NewSink(disabledLogger())
		manager := extension.NewManager()

		models := []*extension.Model{
			{Name: "http", Version: "1.0.0"},
			{Name: "sockets", Version: "2.1.0"},
		}

		require.NoError(t, sink.RegisterAll(manager, models))
		assert.Equal(t, 2, manager.Count())

		// The manager's duplicate policy surfaces through the sink.
		err := sink.RegisterAll(manager, []*extension.Model{{Name: "http", Version: "9.0.0"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http")
	})
}
