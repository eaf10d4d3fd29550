package langadapter

import (
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/valknut-go/internal/types"
)

const typescriptQuery = `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (method_definition name: (property_identifier) @method.name) @method
        (function_expression name: (identifier) @function.name) @function
        (class_declaration name: (type_identifier) @class.name) @class
        (interface_declaration name: (type_identifier) @interface.name) @interface
        (enum_declaration name: (identifier) @enum.name) @enum
        (import_statement source: (string) @import.source) @import
    `

// NewTypeScript returns the TypeScript/TSX language adapter.
func NewTypeScript() Adapter {
	return newTreeSitterAdapter("typescript", []string{".ts", ".tsx"}, tree_sitter_typescript.LanguageTypescript(), typescriptQuery, []captureRule{
		{capture: "function", entityType: types.EntityFunction},
		{capture: "method", entityType: types.EntityMethod},
		{capture: "class", entityType: types.EntityClass},
		{capture: "interface", entityType: types.EntityInterface},
		{capture: "enum", entityType: types.EntityEnum},
		{capture: "import", isImport: true},
	})
}
