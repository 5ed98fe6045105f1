// Package registry reads Khronos XML API registries (gl.xml, glx.xml,
// wgl.xml) and selects the symbols a binding is generated for.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyRegistry is returned for documents with no features or commands.
	ErrEmptyRegistry = errors.New("registry has no features or commands")
	// ErrUnknownNamespace is returned for namespaces other than gl, glx and wgl.
	ErrUnknownNamespace = errors.New("unknown namespace")
	// ErrUnknownAPI is returned for an api outside the filter's namespace.
	ErrUnknownAPI = errors.New("unknown api")
	// ErrUnknownProfile is returned for profiles the registry does not use.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrBadVersion is returned for versions not of the form major.minor.
	ErrBadVersion = errors.New("malformed version")
	// ErrUnknownExtension is returned for extensions missing from the document.
	ErrUnknownExtension = errors.New("unknown extension")
	// ErrUnsupportedExtension is returned for extensions whose supported
	// attribute excludes the filter's api or profile.
	ErrUnsupportedExtension = errors.New("extension not supported by api")
	// ErrMissingSymbol is returned when a feature or extension requires an
	// enum or command the document never defines.
	ErrMissingSymbol = errors.New("symbol required but not defined")
)

// Namespace selects which registry family a binding is generated from.
type Namespace string

const (
	NamespaceGL  Namespace = "gl"
	NamespaceGLX Namespace = "glx"
	NamespaceWGL Namespace = "wgl"
)

// ParseNamespace accepts gl, glx or wgl.
func ParseNamespace(s string) (Namespace, error) {
	switch ns := Namespace(strings.ToLower(s)); ns {
	case NamespaceGL, NamespaceGLX, NamespaceWGL:
		return ns, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNamespace, s)
}

// APIs lists the api attribute values valid for the namespace.
func (ns Namespace) APIs() []string {
	switch ns {
	case NamespaceGL:
		return []string{"gl", "gles1", "gles2", "glsc2"}
	case NamespaceGLX:
		return []string{"glx"}
	case NamespaceWGL:
		return []string{"wgl"}
	}
	return nil
}

// CommandPrefix is the prefix registry command names carry in the namespace.
func (ns Namespace) CommandPrefix() string {
	switch ns {
	case NamespaceGLX:
		return "glX"
	case NamespaceWGL:
		return "wgl"
	}
	return "gl"
}

// EnumPrefix is the prefix registry enum names carry in the namespace.
func (ns Namespace) EnumPrefix() string {
	switch ns {
	case NamespaceGLX:
		return "GLX_"
	case NamespaceWGL:
		return "WGL_"
	}
	return "GL_"
}

// Version is a registry feature number such as 4.6.
type Version struct {
	Major, Minor int
}

// ParseVersion parses "major.minor".
func ParseVersion(s string) (Version, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Version{}, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	ma, err := strconv.Atoi(major)
	if err != nil || ma < 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	mi, err := strconv.Atoi(minor)
	if err != nil || mi < 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	return Version{Major: ma, Minor: mi}, nil
}

// Less reports whether v precedes o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Filter selects the subset of a registry to emit.
type Filter struct {
	Namespace  Namespace
	API        string
	Profile    string
	Version    Version
	Extensions []string

	// Full selects every feature and every supported extension of the api,
	// ignoring Version and removals.
	Full bool
}

// Validate checks that the filter names a known api and profile.
func (f Filter) Validate() error {
	if _, err := ParseNamespace(string(f.Namespace)); err != nil {
		return err
	}
	known := false
	for _, api := range f.Namespace.APIs() {
		if api == f.API {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("%w: %q in namespace %s", ErrUnknownAPI, f.API, f.Namespace)
	}
	switch f.Profile {
	case "", "core", "compatibility", "common", "common-lite":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProfile, f.Profile)
	}
	return nil
}

func (f Filter) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "namespace=%s api=%s", f.Namespace, f.API)
	if f.Profile != "" {
		fmt.Fprintf(&b, " profile=%s", f.Profile)
	}
	if f.Full {
		b.WriteString(" full")
	} else {
		fmt.Fprintf(&b, " version=%s", f.Version)
	}
	if len(f.Extensions) > 0 {
		fmt.Fprintf(&b, " extensions=%s", strings.Join(f.Extensions, ","))
	}
	return b.String()
}

// Registry is the filtered view of a Document that a generator renders.
// All slices are sorted by name.
type Registry struct {
	Namespace  Namespace
	Filter     Filter
	Types      []Type
	Enums      []Enum
	Cmds       []Cmd
	Features   []string
	Extensions []string

	// Aliases maps a command name to the names tried when it cannot be
	// resolved directly.
	Aliases map[string][]string
}

// Type is a registry typedef.
type Type struct {
	Name       string
	API        string
	Requires   string
	Definition string
}

// Enum is a registry constant. Value is kept exactly as written.
type Enum struct {
	Name  string
	Value string
	Type  string
	Alias string
	API   string
	Group string
}

// Cmd is a registry command.
type Cmd struct {
	Name     string
	Proto    Binding
	Params   []Binding
	Alias    string
	Vecequiv string
}

// Binding is a command prototype or parameter. Type holds the C declaration
// with the identifier removed, e.g. "const GLchar *".
type Binding struct {
	Name  string
	Type  string
	PType string
	Len   string
	Group string
}

// HasType reports whether the registry selected the named type.
func (r *Registry) HasType(name string) bool {
	for _, t := range r.Types {
		if t.Name == name {
			return true
		}
	}
	return false
}
