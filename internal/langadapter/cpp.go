package langadapter

import (
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/standardbeagle/valknut-go/internal/types"
)

const cppQuery = `
        (function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
        (class_specifier name: (type_identifier) @class.name) @class
        (struct_specifier name: (type_identifier) @struct.name) @struct
        (enum_specifier name: (type_identifier) @enum.name) @enum
        (preproc_include) @import
        (using_declaration) @import
    `

// NewCpp returns the C/C++ language adapter, shared across all C/C++
// extensions the way the teacher's setupCpp shares one parser instance.
func NewCpp() Adapter {
	return newTreeSitterAdapter("cpp", []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"}, tree_sitter_cpp.Language(), cppQuery, []captureRule{
		{capture: "function", entityType: types.EntityFunction},
		{capture: "class", entityType: types.EntityClass},
		{capture: "struct", entityType: types.EntityStruct},
		{capture: "enum", entityType: types.EntityEnum},
		{capture: "import", isImport: true},
	})
}
