package langadapter

import (
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/valknut-go/internal/types"
)

const pythonQuery = `
        (class_definition
            body: (block
                (function_definition name: (identifier) @method.name))) @method
        (function_definition name: (identifier) @function.name) @function
        (class_definition name: (identifier) @class.name) @class
        (import_statement) @import
        (import_from_statement) @import
    `

// NewPython returns the Python language adapter.
func NewPython() Adapter {
	return newTreeSitterAdapter("python", []string{".py"}, tree_sitter_python.Language(), pythonQuery, []captureRule{
		{capture: "function", entityType: types.EntityFunction},
		{capture: "method", entityType: types.EntityMethod},
		{capture: "class", entityType: types.EntityClass},
		{capture: "import", isImport: true},
	})
}
