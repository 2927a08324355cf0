package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolutionContext(t *testing.T) {
	t.Run("deterministic regardless of accumulation order", func(t *testing.T) {
		m1 := &Model{Name: "alpha", Version: "1.0.0"}
		m2 := &Model{Name: "beta", Version: "2.0.0"}
		m3 := &Model{Name: "gamma", Version: "3.0.0"}

		forward := NewResolutionContext([]*Model{m1, m2, m3})
		backward := NewResolutionContext([]*Model{m3, m2, m1})

		assert.Equal(t, forward.Names(), backward.Names())
		assert.Equal(t, forward.Models(), backward.Models())
	})

	t.Run("empty set", func(t *testing.T) {
		rctx := NewResolutionContext(nil)

		assert.Zero(t, rctx.Len())
		assert.Empty(t, rctx.Names())
		assert.Empty(t, rctx.Models())

		_, ok := rctx.Model("anything")
		assert.False(t, ok)
	})

	t.Run("snapshot is isolated from later appends", func(t *testing.T) {
		models := make([]*Model, 0, 2)
		models = append(models, &Model{Name: "alpha"})

		rctx := NewResolutionContext(models)
		models = append(models, &Model{Name: "beta"})
		_ = models

		assert.Equal(t, 1, rctx.Len())
		_, ok := rctx.Model("beta")
		assert.False(t, ok)
	})

	t.Run("ignores nil and unnamed models", func(t *testing.T) {
		rctx := NewResolutionContext([]*Model{nil, {Name: ""}, {Name: "alpha"}})

		assert.Equal(t, 1, rctx.Len())
		assert.Equal(t, []string{"alpha"}, rctx.Names())
	})

	t.Run("first model wins on duplicate names", func(t *testing.T) {
		first := &Model{Name: "alpha", Version: "1.0.0"}
		second := &Model{Name: "alpha", Version: "9.9.9"}

		rctx := NewResolutionContext([]*Model{first, second})

		got, ok := rctx.Model("alpha")
		require.True(t, ok)
		assert.Equal(t, "1.0.0", got.Version)
	})
}

func TestResolutionContext_Model(t *testing.T) {
	t.Run("finds resolved models by name", func(t *testing.T) {
		want := &Model{Name: "alpha", Version: "1.0.0"}
		rctx := NewResolutionContext([]*Model{want})

		got, ok := rctx.Model("alpha")
		require.True(t, ok)
		assert.Same(t, want, got)
	})
}

func TestResolutionContext_Names(t *testing.T) {
	t.Run("sorted and copied", func(t *testing.T) {
		rctx := NewResolutionContext([]*Model{
			{Name: "zeta"}, {Name: "alpha"},
		})

		names := rctx.Names()
		assert.Equal(t, []string{"alpha", "zeta"}, names)

		names[0] = "mutated"
		assert.Equal(t, []string{"alpha", "zeta"}, rctx.Names())
	})
}
