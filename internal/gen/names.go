package gen

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tinyrange/glbind/internal/registry"
)

// reserved names are used by the generated code itself and by the packages
// it imports.
var reserved = map[string]bool{
	"loader":       true,
	"unsafe":       true,
	"loaded":       true,
	"loadfn":       true,
	"c":            true,
	"Context":      true,
	"NewContext":   true,
	"LoadWith":     true,
	"LoadFunction": true,
	"IsLoaded":     true,
}

// commandIdent strips the namespace prefix from a command name:
// glClear -> Clear, glXSwapBuffers -> SwapBuffers.
func commandIdent(ns registry.Namespace, name string) string {
	if ident, ok := strings.CutPrefix(name, ns.CommandPrefix()); ok && startsUpper(ident) {
		return ident
	}
	return upperFirst(name)
}

// enumIdent strips the namespace prefix from an enum name unless the result
// would not be an identifier: GL_BLEND -> BLEND, GL_2D -> GL_2D.
func enumIdent(ns registry.Namespace, name string) string {
	if ident, ok := strings.CutPrefix(name, ns.EnumPrefix()); ok && startsUpper(ident) {
		return ident
	}
	return upperFirst(name)
}

// typeIdent names a registry typedef in generated code.
func typeIdent(name string) string {
	ident := strings.TrimLeft(name, "_")
	if ident == "" {
		return name
	}
	return upperFirst(ident)
}

// paramIdent makes a registry parameter name safe to declare next to the
// identifiers in taken. Clashes get an x prefix, as in xtype.
func paramIdent(name string, taken map[string]bool) string {
	if name == "" {
		name = "arg"
	}
	for token.IsKeyword(name) || reserved[name] || taken[name] || isPredeclared(name) {
		name = "x" + name
	}
	return name
}

func isPredeclared(name string) bool {
	switch name {
	case "bool", "byte", "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "string", "error", "rune", "any",
		"len", "cap", "new", "make", "nil", "true", "false", "panic":
		return true
	}
	return false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
