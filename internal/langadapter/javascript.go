package langadapter

import (
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/standardbeagle/valknut-go/internal/types"
)

const javascriptQuery = `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (variable_declarator
            name: (identifier) @function.name
            value: [(arrow_function) (function_expression) (generator_function)]) @function
        (method_definition name: (property_identifier) @method.name) @method
        (class_declaration name: (identifier) @class.name) @class
        (import_statement source: (string) @import.source) @import
    `

// NewJavaScript returns the JavaScript/JSX language adapter.
func NewJavaScript() Adapter {
	return newTreeSitterAdapter("javascript", []string{".js", ".jsx"}, tree_sitter_javascript.Language(), javascriptQuery, []captureRule{
		{capture: "function", entityType: types.EntityFunction},
		{capture: "method", entityType: types.EntityMethod},
		{capture: "class", entityType: types.EntityClass},
		{capture: "import", isImport: true},
	})
}
