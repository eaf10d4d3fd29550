package langadapter

import (
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/standardbeagle/valknut-go/internal/types"
)

const javaQuery = `
        (method_declaration name: (identifier) @method.name) @method
        (constructor_declaration name: (identifier) @constructor.name) @constructor
        (class_declaration name: (identifier) @class.name) @class
        (record_declaration name: (identifier) @class.name) @class
        (interface_declaration name: (identifier) @interface.name) @interface
        (enum_declaration name: (identifier) @enum.name) @enum
        (import_declaration) @import
    `

// NewJava returns the Java language adapter.
func NewJava() Adapter {
	return newTreeSitterAdapter("java", []string{".java"}, tree_sitter_java.Language(), javaQuery, []captureRule{
		{capture: "method", entityType: types.EntityMethod},
		{capture: "constructor", entityType: types.EntityMethod},
		{capture: "class", entityType: types.EntityClass},
		{capture: "interface", entityType: types.EntityInterface},
		{capture: "enum", entityType: types.EntityEnum},
		{capture: "import", isImport: true},
	})
}
