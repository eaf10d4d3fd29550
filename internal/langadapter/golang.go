package langadapter

import (
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/standardbeagle/valknut-go/internal/types"
)

const goQuery = `
        (function_declaration name: (identifier) @function.name) @function
        (method_declaration
            receiver: (parameter_list) @method.receiver
            name: (field_identifier) @method.name) @method
        (type_declaration
            (type_spec name: (type_identifier) @type.name)) @type
        (func_literal) @function
        (import_spec path: (interpreted_string_literal) @import.path) @import
    `

// NewGo returns the Go language adapter.
func NewGo() Adapter {
	return newTreeSitterAdapter("go", []string{".go"}, tree_sitter_go.Language(), goQuery, []captureRule{
		{capture: "function", entityType: types.EntityFunction},
		{capture: "method", entityType: types.EntityMethod},
		{capture: "type", entityType: types.EntityStruct},
		{capture: "import", isImport: true},
	})
}
