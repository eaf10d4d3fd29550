package vctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WiresSharedRegistriesWithDefaultAdapters(t *testing.T) {
	ctx := New(Options{})
	require.NotNil(t, ctx.Interner)
	require.NotNil(t, ctx.ASTs)
	require.NotNil(t, ctx.Adapters)

	exts := ctx.Adapters.Extensions()
	assert.Contains(t, exts, ".go")
	assert.Contains(t, exts, ".py")
}
