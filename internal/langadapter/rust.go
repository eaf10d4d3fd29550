package langadapter

import (
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/standardbeagle/valknut-go/internal/types"
)

const rustQuery = `
        (impl_item
            body: (declaration_list
                (function_item name: (identifier) @method.name))) @method
        (trait_item
            body: (declaration_list
                (function_item name: (identifier) @method.name))) @method
        (function_item name: (identifier) @function.name) @function
        (struct_item name: (type_identifier) @struct.name) @struct
        (enum_item name: (type_identifier) @enum.name) @enum
        (trait_item name: (type_identifier) @interface.name) @interface
        (use_declaration) @import
        (mod_item name: (identifier) @module.name) @module
    `

// NewRust returns the Rust language adapter.
func NewRust() Adapter {
	return newTreeSitterAdapter("rust", []string{".rs"}, tree_sitter_rust.Language(), rustQuery, []captureRule{
		{capture: "function", entityType: types.EntityFunction},
		{capture: "method", entityType: types.EntityMethod},
		{capture: "struct", entityType: types.EntityStruct},
		{capture: "enum", entityType: types.EntityEnum},
		{capture: "interface", entityType: types.EntityTrait},
		{capture: "module", entityType: types.EntityModule},
		{capture: "import", isImport: true},
	})
}
