package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/atrium/pkg/extension"
)

func TestManifestAdapter_Adapt(t *testing.T) {
	t.Run("maps the manifest to exactly two loader parameters", func(t *testing.T) {
		loader := &stubLoader{id: "native"}
		adapter := NewManifestAdapter(disabledLogger(), loader)

		p := newPlugin(t, "legacy", nil)
		withManifest(t, p, "version: \"2.0\"\ndescriber:\n  type: T2\n")

		model, err := adapter.Adapt(context.Background(), p, extension.NewResolutionContext(nil))

		require.NoError(t, err)
		assert.Equal(t, "T2", model.Name)
		assert.Equal(t, "2.0", model.Version)

		require.Len(t, loader.params, 1)
		require.Len(t, loader.params[0], 2)
		assert.Equal(t, "T2", loader.params[0][extension.ParamType])
		assert.Equal(t, "2.0", loader.params[0][extension.ParamVersion])
	})

	t.Run("passes the current resolution context through", func(t *testing.T) {
		loader := &stubLoader{id: "native"}
		adapter := NewManifestAdapter(disabledLogger(), loader)

		p := newPlugin(t, "legacy", nil)
		withManifest(t, p, "version: \"1.0\"\ndescriber:\n  type: T\n")

		rctx := extension.NewResolutionContext([]*extension.Model{
			{Name: "earlier", Version: "1.0.0"},
		})

		_, err := adapter.Adapt(context.Background(), p, rctx)

		require.NoError(t, err)
		require.Len(t, loader.observed, 1)
		assert.Equal(t, []string{"earlier"}, loader.observed[0])
	})

	t.Run("fails when the manifest is missing", func(t *testing.T) {
		adapter := NewManifestAdapter(disabledLogger(), &stubLoader{id: "native"})

		p := newPlugin(t, "bare", nil)

		_, err := adapter.Adapt(context.Background(), p, extension.NewResolutionContext(nil))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open extension manifest")
	})

	t.Run("fails on a malformed manifest", func(t *testing.T) {
		adapter := NewManifestAdapter(disabledLogger(), &stubLoader{id: "native"})

		p := newPlugin(t, "broken", nil)
		withManifest(t, p, "{not yaml: [")

		_, err := adapter.Adapt(context.Background(), p, extension.NewResolutionContext(nil))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse extension manifest")
	})

	t.Run("fails on a manifest without a describer type", func(t *testing.T) {
		adapter := NewManifestAdapter(disabledLogger(), &stubLoader{id: "native"})

		p := newPlugin(t, "typeless", nil)
		withManifest(t, p, "version: \"1.0\"\n")

		_, err := adapter.Adapt(context.Background(), p, extension.NewResolutionContext(nil))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no describer type")
	})

	t.Run("propagates loader failures", func(t *testing.T) {
		boom := errors.New("definition not found")
		adapter := NewManifestAdapter(disabledLogger(), &stubLoader{id: "native", err: boom})

		p := newPlugin(t, "legacy", nil)
		withManifest(t, p, "version: \"1.0\"\ndescriber:\n  type: T\n")

		_, err := adapter.Adapt(context.Background(), p, extension.NewResolutionContext(nil))

		assert.ErrorIs(t, err, boom)
	})
}
