package langadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/types"
)

func TestGoAdapter_ExtractCodeEntities(t *testing.T) {
	src := []byte(`package sample

type Widget struct{}

func (w *Widget) Render() string {
	return "ok"
}

func New() *Widget {
	return &Widget{}
}
`)
	a := NewGo()
	entities, err := a.ExtractCodeEntities(src, "sample.go")
	require.NoError(t, err)

	var gotMethod, gotFunc, gotType bool
	for _, e := range entities {
		switch e.EntityType {
		case types.EntityMethod:
			gotMethod = true
			assert.Equal(t, "Render", e.Name)
		case types.EntityFunction:
			gotFunc = true
		case types.EntityStruct:
			gotType = true
			assert.Equal(t, "Widget", e.Name)
		}
	}
	assert.True(t, gotMethod, "expected a method entity")
	assert.True(t, gotFunc, "expected a function entity")
	assert.True(t, gotType, "expected a type entity")
}

func TestGoAdapter_ExtractImports(t *testing.T) {
	src := []byte(`package sample

import (
	"fmt"
	"os"
)

func main() { fmt.Println(os.Args) }
`)
	a := NewGo()
	imports, err := a.ExtractImports(src)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, "fmt", imports[0].Module)
	assert.Equal(t, "os", imports[1].Module)
}

func TestGoAdapter_ParseSource_BuildsParentChildLinks(t *testing.T) {
	src := []byte(`package sample

type Widget struct{}

func (w *Widget) Render() string {
	return "ok"
}
`)
	a := NewGo()
	idx, err := a.ParseSource(src, "sample.go")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(idx.Entities), 2)
}

func TestPythonAdapter_ExtractCodeEntities(t *testing.T) {
	src := []byte(`import os

class Greeter:
    def greet(self):
        return "hi"

def standalone():
    pass
`)
	a := NewPython()
	entities, err := a.ExtractCodeEntities(src, "sample.py")
	require.NoError(t, err)

	var gotMethod, gotFunc, gotClass bool
	for _, e := range entities {
		switch e.EntityType {
		case types.EntityMethod:
			gotMethod = true
		case types.EntityFunction:
			gotFunc = true
		case types.EntityClass:
			gotClass = true
			assert.Equal(t, "Greeter", e.Name)
		}
	}
	assert.True(t, gotMethod)
	assert.True(t, gotFunc)
	assert.True(t, gotClass)
}

func TestRegistry_DefaultCoversAllExtensions(t *testing.T) {
	r := DefaultRegistry()
	for _, ext := range []string{".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".rs", ".java", ".cpp", ".h"} {
		_, ok := r.For(ext)
		assert.True(t, ok, "expected adapter registered for %s", ext)
	}
	_, ok := r.For(".unknown")
	assert.False(t, ok)
}
