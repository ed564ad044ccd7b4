// Package languages registers the tree-sitter grammars used by the in-process
// symbol source.
package languages

import (
	"lintrun/internal/tags"

	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// RegisterAll adds every supported language to r.
func RegisterAll(r *tags.Registry) {
	RegisterC(r)
	RegisterGo(r)
	RegisterPython(r)
}

// RegisterC covers what ctags reports for C by default: functions,
// function-like and object-like macros, tagged types and typedefs.
func RegisterC(r *tags.Registry) {
	r.Register(&tags.LanguageSpec{
		Name:     "c",
		Language: c.GetLanguage(),
		Query: `
			(function_definition
				declarator: (function_declarator declarator: (identifier) @name)) @def
			(function_definition
				declarator: (pointer_declarator
					declarator: (function_declarator declarator: (identifier) @name))) @def
			(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @def
			(union_specifier name: (type_identifier) @name body: (field_declaration_list)) @def
			(enum_specifier name: (type_identifier) @name body: (enumerator_list)) @def
			(type_definition declarator: (type_identifier) @name) @def
			(preproc_function_def name: (identifier) @name) @def
			(preproc_def name: (identifier) @name) @def
		`,
		Extensions: []string{"c", "h"},
	})
}

func RegisterGo(r *tags.Registry) {
	r.Register(&tags.LanguageSpec{
		Name:     "go",
		Language: golang.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @def
			(method_declaration name: (field_identifier) @name) @def
			(type_spec name: (type_identifier) @name) @def
		`,
		Extensions: []string{"go"},
	})
}

func RegisterPython(r *tags.Registry) {
	r.Register(&tags.LanguageSpec{
		Name:     "python",
		Language: python.GetLanguage(),
		Query: `
			(function_definition name: (identifier) @name) @def
			(class_definition name: (identifier) @name) @def
		`,
		Extensions: []string{"py"},
	})
}
