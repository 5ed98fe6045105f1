// Package gen renders a selected registry as a Go package whose entry
// points are bound at run time through the loader package.
package gen

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/tinyrange/glbind/internal/registry"
)

// LoaderImport is the import path generated packages use for run time
// binding.
const LoaderImport = "github.com/tinyrange/glbind/loader"

var (
	// ErrUnknownGenerator is returned for a Kind other than global or struct.
	ErrUnknownGenerator = errors.New("unknown generator")
	// ErrBadEnumValue is returned for enum values that are neither integer
	// nor string literals.
	ErrBadEnumValue = errors.New("enum value is not an integer or string literal")
	// ErrDuplicateIdent is returned when two symbols map to one Go name.
	ErrDuplicateIdent = errors.New("identifier declared twice")
)

// Kind selects the shape of the generated package.
type Kind string

const (
	// Global emits package level wrappers backed by package level slots.
	Global Kind = "global"
	// Struct emits a Context type holding one slot per entry point.
	Struct Kind = "struct"
)

// ParseKind accepts global or struct.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case Global, Struct:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGenerator, s)
}

// Options controls a generator run.
type Options struct {
	Package      string
	Kind         Kind
	Source       string // registry name recorded in the header
	LoaderImport string
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"join":  strings.Join,
	"quote": strconv.Quote,
}).ParseFS(templateFS, "templates/*.tmpl"))

var enumValuePattern = regexp.MustCompile(`^-?(0[xX][0-9a-fA-F]+|[0-9]+)$`)

type tmplData struct {
	Source       string
	Filter       string
	Namespace    registry.Namespace
	Package      string
	LoaderImport string
	Features     []string
	Extensions   []string
	NeedsUnsafe  bool
	Types        []tmplType
	Enums        []tmplEnum
	Cmds         []tmplCmd
}

type tmplType struct {
	Ident  string
	GoType string
}

type tmplEnum struct {
	Name   string
	Ident  string
	Value  string
	GoType string
}

type tmplCmd struct {
	Name      string
	Ident     string
	ParamList string // "mask GLbitfield"
	TypeList  string // "GLbitfield"
	ArgList   string // "mask"
	Result    string
	Names     string // quoted registry name followed by its fallbacks
}

// Generate writes the Go source for reg to w.
func Generate(w io.Writer, reg *registry.Registry, opts Options) error {
	if opts.Kind == "" {
		opts.Kind = Global
	}
	if _, err := ParseKind(string(opts.Kind)); err != nil {
		return err
	}
	if opts.Package == "" {
		opts.Package = string(reg.Namespace)
	}
	if opts.LoaderImport == "" {
		opts.LoaderImport = LoaderImport
	}

	data, err := newTmplData(reg, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(opts.Kind)+".go.tmpl", data); err != nil {
		return fmt.Errorf("render %s: %w", opts.Kind, err)
	}
	code, err := format(buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(code)
	return err
}

// format runs goimports over rendered source. On failure the source is
// logged at debug level, not returned.
func format(src []byte) ([]byte, error) {
	code, err := imports.Process("", src, nil)
	if err != nil {
		slog.Debug("Unformatted output", "bytes", len(src), "source", string(src))
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return code, nil
}

func newTmplData(reg *registry.Registry, opts Options) (*tmplData, error) {
	data := &tmplData{
		Source:       opts.Source,
		Filter:       reg.Filter.String(),
		Namespace:    reg.Namespace,
		Package:      opts.Package,
		LoaderImport: opts.LoaderImport,
		Features:     reg.Features,
		Extensions:   reg.Extensions,
	}
	idents := make(map[string]string) // Go identifier -> registry name
	declare := func(ident, name string) error {
		if reserved[ident] {
			return fmt.Errorf("%w: %s (from %s) is reserved", ErrDuplicateIdent, ident, name)
		}
		if prev, ok := idents[ident]; ok {
			return fmt.Errorf("%w: %s (from %s and %s)", ErrDuplicateIdent, ident, prev, name)
		}
		idents[ident] = name
		return nil
	}

	mapper := &typeMapper{declared: make(map[string]string)}
	for _, t := range reg.Types {
		goType, ok := registryTypes[t.Name]
		if !ok || goType == "" || goType == opaque {
			// Header includes, void and opaque structs are not declared.
			continue
		}
		ident := typeIdent(t.Name)
		if err := declare(ident, t.Name); err != nil {
			return nil, err
		}
		mapper.declared[t.Name] = ident
		data.Types = append(data.Types, tmplType{Ident: ident, GoType: goType})
	}

	boolType := mapper.declared["GLboolean"]
	for _, e := range reg.Enums {
		if !validEnumValue(e.Value) {
			return nil, fmt.Errorf("%w: %s = %q", ErrBadEnumValue, e.Name, e.Value)
		}
		ident := enumIdent(reg.Namespace, e.Name)
		if _, taken := idents[ident]; taken {
			ident = upperFirst(e.Name)
		}
		if err := declare(ident, e.Name); err != nil {
			return nil, err
		}
		te := tmplEnum{Name: e.Name, Ident: ident, Value: e.Value}
		if boolType != "" && (e.Name == "GL_TRUE" || e.Name == "GL_FALSE") {
			te.GoType = boolType
		}
		data.Enums = append(data.Enums, te)
	}

	for _, cmd := range reg.Cmds {
		tc, err := newTmplCmd(reg, cmd, mapper)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", cmd.Name, err)
		}
		if _, taken := idents[tc.Ident]; taken {
			tc.Ident = upperFirst(cmd.Name)
		}
		if err := declare(tc.Ident, cmd.Name); err != nil {
			return nil, err
		}
		data.Cmds = append(data.Cmds, tc)
	}

	for _, t := range data.Types {
		if strings.Contains(t.GoType, "unsafe.") {
			data.NeedsUnsafe = true
		}
	}
	for _, c := range data.Cmds {
		if strings.Contains(c.TypeList, "unsafe.") || strings.Contains(c.Result, "unsafe.") {
			data.NeedsUnsafe = true
		}
	}
	return data, nil
}

// validEnumValue accepts integer literals and double quoted strings such as
// GLX_EXTENSION_NAME's "GLX". Both are emitted as written.
func validEnumValue(v string) bool {
	return enumValuePattern.MatchString(v) || isStringLiteral(v)
}

func isStringLiteral(v string) bool {
	if len(v) < 2 || v[0] != '"' {
		return false
	}
	_, err := strconv.Unquote(v)
	return err == nil
}

func newTmplCmd(reg *registry.Registry, cmd registry.Cmd, mapper *typeMapper) (tmplCmd, error) {
	tc := tmplCmd{
		Name:  cmd.Name,
		Ident: commandIdent(reg.Namespace, cmd.Name),
	}

	result, err := mapper.goType(cmd.Proto.Type)
	if err != nil {
		return tc, fmt.Errorf("result: %w", err)
	}
	tc.Result = result

	// Parameter names must not shadow the types used in the signature.
	taken := make(map[string]bool, len(mapper.declared))
	for _, ident := range mapper.declared {
		taken[ident] = true
	}

	var params, types, args []string
	for i, p := range cmd.Params {
		goType, err := mapper.goType(p.Type)
		if err != nil {
			return tc, fmt.Errorf("param %d (%s): %w", i, p.Name, err)
		}
		if goType == "" {
			// (void) parameter lists.
			continue
		}
		name := paramIdent(p.Name, taken)
		taken[name] = true
		params = append(params, name+" "+goType)
		types = append(types, goType)
		args = append(args, name)
	}
	tc.ParamList = strings.Join(params, ", ")
	tc.TypeList = strings.Join(types, ", ")
	tc.ArgList = strings.Join(args, ", ")

	names := []string{strconv.Quote(cmd.Name)}
	for _, alt := range reg.Aliases[cmd.Name] {
		names = append(names, strconv.Quote(alt))
	}
	tc.Names = strings.Join(names, ", ")
	return tc, nil
}
